package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/repository"
)

type fakePhraseRepo struct {
	phrases   []models.Phrase
	listCalls int
}

func (f *fakePhraseRepo) List(ctx context.Context, filter models.PhraseFilter) (*repository.PhraseListResult, error) {
	f.listCalls++

	allowed := func(category string) bool {
		if len(filter.Categories) == 0 {
			return true
		}
		for _, c := range filter.Categories {
			if c == category {
				return true
			}
		}
		return false
	}

	var out []models.Phrase
	for _, p := range f.phrases {
		if filter.Language != "" && p.Language != filter.Language {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if !allowed(p.Category) {
			continue
		}
		out = append(out, p)
	}
	return &repository.PhraseListResult{Phrases: out, Total: len(out)}, nil
}

func (f *fakePhraseRepo) GetByID(ctx context.Context, id int64) (*models.Phrase, error) {
	for _, p := range f.phrases {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrPhraseNotFound
}

func (f *fakePhraseRepo) Create(ctx context.Context, p *models.Phrase) error {
	p.ID = int64(len(f.phrases) + 1)
	f.phrases = append(f.phrases, *p)
	return nil
}

func (f *fakePhraseRepo) Update(ctx context.Context, p *models.Phrase) error {
	for i := range f.phrases {
		if f.phrases[i].ID == p.ID {
			f.phrases[i] = *p
			return nil
		}
	}
	return repository.ErrPhraseNotFound
}

func (f *fakePhraseRepo) Delete(ctx context.Context, id int64) error {
	for i := range f.phrases {
		if f.phrases[i].ID == id {
			f.phrases = append(f.phrases[:i], f.phrases[i+1:]...)
			return nil
		}
	}
	return repository.ErrPhraseNotFound
}

func newTestCache(t *testing.T) *cache.Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewFromClient(client)
}

func seedPhrases() []models.Phrase {
	return []models.Phrase{
		{ID: 1, TargetText: "Hello, how are you?", TranslatedText: "Olá, como você está?", Category: "Conversations", Language: models.LanguageEnglish, IsFree: true},
		{ID: 2, TargetText: "The server is down", TranslatedText: "O servidor caiu", Category: "Technology", Language: models.LanguageEnglish, IsFree: true},
		{ID: 3, TargetText: "I would like to order", TranslatedText: "Eu gostaria de pedir", Category: "Restaurant", Language: models.LanguageEnglish, IsFree: false},
	}
}

func TestPhraseServiceListFiltersAndCaches(t *testing.T) {
	repo := &fakePhraseRepo{phrases: seedPhrases()}
	svc := NewPhraseService(repo, newTestCache(t), time.Minute)
	ctx := context.Background()

	filter := models.PhraseFilter{
		Language:   models.LanguageEnglish,
		Categories: []string{"Conversations", "Technology"},
	}

	result, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	for _, p := range result.Phrases {
		assert.Contains(t, []string{"Conversations", "Technology"}, p.Category)
	}
	assert.Equal(t, 1, repo.listCalls)

	// Second identical call is served from cache.
	result2, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, result.Total, result2.Total)
	assert.Equal(t, 1, repo.listCalls)
}

func TestPhraseServiceListDistinctFiltersDistinctEntries(t *testing.T) {
	repo := &fakePhraseRepo{phrases: seedPhrases()}
	svc := NewPhraseService(repo, newTestCache(t), time.Minute)
	ctx := context.Background()

	free, err := svc.List(ctx, models.PhraseFilter{Categories: []string{"Conversations", "Technology"}})
	require.NoError(t, err)
	assert.Equal(t, 2, free.Total)

	all, err := svc.List(ctx, models.PhraseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 2, repo.listCalls)
}

func TestPhraseServiceListEmptyResultIsNotNil(t *testing.T) {
	repo := &fakePhraseRepo{}
	svc := NewPhraseService(repo, newTestCache(t), time.Minute)

	result, err := svc.List(context.Background(), models.PhraseFilter{})
	require.NoError(t, err)
	assert.NotNil(t, result.Phrases)
	assert.Empty(t, result.Phrases)
}

func TestPhraseServiceCreateInvalidatesListCache(t *testing.T) {
	repo := &fakePhraseRepo{phrases: seedPhrases()}
	svc := NewPhraseService(repo, newTestCache(t), time.Minute)
	ctx := context.Background()

	_, err := svc.List(ctx, models.PhraseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	err = svc.Create(ctx, &models.Phrase{
		TargetText:     "Good morning",
		TranslatedText: "Bom dia",
		Category:       "Conversations",
		Language:       models.LanguageEnglish,
		IsFree:         true,
	})
	require.NoError(t, err)

	result, err := svc.List(ctx, models.PhraseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, repo.listCalls)
}

func TestPhraseServiceGetByID(t *testing.T) {
	repo := &fakePhraseRepo{phrases: seedPhrases()}
	svc := NewPhraseService(repo, newTestCache(t), time.Minute)
	ctx := context.Background()

	p, err := svc.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Technology", p.Category)

	_, err = svc.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrPhraseNotFound)
}
