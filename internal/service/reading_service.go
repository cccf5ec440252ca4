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

// ReadingStore is the repository surface the reading service needs
type ReadingStore interface {
	List(ctx context.Context, filter models.ReadingFilter) (*repository.ReadingListResult, error)
	GetByID(ctx context.Context, id int64) (*models.Reading, error)
	Create(ctx context.Context, rd *models.Reading) error
	Update(ctx context.Context, rd *models.Reading) error
	Delete(ctx context.Context, id int64) error
}

// ReadingService handles business logic for reading operations
type ReadingService struct {
	repo     ReadingStore
	cache    *cache.Redis
	cacheTTL time.Duration
}

// NewReadingService creates a new reading service
func NewReadingService(repo ReadingStore, cache *cache.Redis, cacheTTL time.Duration) *ReadingService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &ReadingService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// ReadingResult contains the result of a reading list operation
type ReadingResult struct {
	Readings []models.Reading `json:"readings"`
	Total    int              `json:"total"`
}

// List returns readings matching the filter
func (s *ReadingService) List(ctx context.Context, filter models.ReadingFilter) (*ReadingResult, error) {
	allowKey := strings.Join(filter.Categories, ",")
	cacheKey := cache.GenerateCacheKey("readings:list", filter.Category, allowKey, filter.Limit, filter.Offset)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var result ReadingResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	listResult, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &ReadingResult{
		Readings: listResult.Readings,
		Total:    listResult.Total,
	}
	if result.Readings == nil {
		result.Readings = []models.Reading{}
	}

	if data, err := json.Marshal(result); err == nil {
		_ = s.cache.Set(ctx, cacheKey, string(data), s.cacheTTL)
	}

	return result, nil
}

// GetByID returns a single reading by ID
func (s *ReadingService) GetByID(ctx context.Context, id int64) (*models.Reading, error) {
	cacheKey := cache.GenerateCacheKey("readings:item", id)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var rd models.Reading
		if err := json.Unmarshal([]byte(cached), &rd); err == nil {
			return &rd, nil
		}
	}

	rd, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rd); err == nil {
		_ = s.cache.Set(ctx, cacheKey, string(data), 5*time.Minute)
	}

	return rd, nil
}

// Create inserts a reading and invalidates list caches
func (s *ReadingService) Create(ctx context.Context, rd *models.Reading) error {
	if err := s.repo.Create(ctx, rd); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update modifies a reading and invalidates caches
func (s *ReadingService) Update(ctx context.Context, rd *models.Reading) error {
	if err := s.repo.Update(ctx, rd); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cache.GenerateCacheKey("readings:item", rd.ID))
	s.invalidate(ctx)
	return nil
}

// Delete removes a reading and invalidates caches
func (s *ReadingService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cache.GenerateCacheKey("readings:item", id))
	s.invalidate(ctx)
	return nil
}

func (s *ReadingService) invalidate(ctx context.Context) {
	_ = s.cache.DeleteByPrefix(ctx, "readings:list")
}
