package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/repository"
)

// PhraseStore is the repository surface the phrase service needs
type PhraseStore interface {
	List(ctx context.Context, filter models.PhraseFilter) (*repository.PhraseListResult, error)
	GetByID(ctx context.Context, id int64) (*models.Phrase, error)
	Create(ctx context.Context, p *models.Phrase) error
	Update(ctx context.Context, p *models.Phrase) error
	Delete(ctx context.Context, id int64) error
}

// PhraseService handles business logic for phrase operations
type PhraseService struct {
	repo     PhraseStore
	cache    *cache.Redis
	cacheTTL time.Duration
}

// NewPhraseService creates a new phrase service
func NewPhraseService(repo PhraseStore, cache *cache.Redis, cacheTTL time.Duration) *PhraseService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &PhraseService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// PhraseResult contains the result of a phrase list operation
type PhraseResult struct {
	Phrases []models.Phrase `json:"phrases"`
	Total   int             `json:"total"`
}

// List returns phrases matching the filter. Results are cached per filter
// combination, so two users with the same plan and query share an entry.
func (s *PhraseService) List(ctx context.Context, filter models.PhraseFilter) (*PhraseResult, error) {
	allowKey := strings.Join(filter.Categories, ",")
	cacheKey := cache.GenerateCacheKey("phrases:list", filter.Language, filter.Category, allowKey, filter.Limit, filter.Offset)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var result PhraseResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	listResult, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &PhraseResult{
		Phrases: listResult.Phrases,
		Total:   listResult.Total,
	}
	if result.Phrases == nil {
		result.Phrases = []models.Phrase{}
	}

	if data, err := json.Marshal(result); err == nil {
		_ = s.cache.Set(ctx, cacheKey, string(data), s.cacheTTL)
	}

	return result, nil
}

// GetByID returns a single phrase by ID
func (s *PhraseService) GetByID(ctx context.Context, id int64) (*models.Phrase, error) {
	cacheKey := cache.GenerateCacheKey("phrases:item", id)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var p models.Phrase
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		_ = s.cache.Set(ctx, cacheKey, string(data), 5*time.Minute)
	}

	return p, nil
}

// Create inserts a phrase and invalidates list caches
func (s *PhraseService) Create(ctx context.Context, p *models.Phrase) error {
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update modifies a phrase and invalidates caches
func (s *PhraseService) Update(ctx context.Context, p *models.Phrase) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cache.GenerateCacheKey("phrases:item", p.ID))
	s.invalidate(ctx)
	return nil
}

// Delete removes a phrase and invalidates caches
func (s *PhraseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cache.GenerateCacheKey("phrases:item", id))
	s.invalidate(ctx)
	return nil
}

func (s *PhraseService) invalidate(ctx context.Context) {
	_ = s.cache.DeleteByPrefix(ctx, "phrases:list")
}
