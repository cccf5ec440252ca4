package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/models"
)

func newTestLimiter(t *testing.T, limits map[string]Limit) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiterWithLimits(cache.NewFromClient(client), limits)
}

func TestAllowWithinLimit(t *testing.T) {
	limiter := newTestLimiter(t, map[string]Limit{
		models.PlanFree:      {RequestsPerMinute: 3},
		models.PlanAnonymous: {RequestsPerMinute: 1},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "user-1", models.PlanFree)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "user-1", models.PlanFree)
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request should be rejected")
}

func TestAllowIsolatesIdentifiers(t *testing.T) {
	limiter := newTestLimiter(t, map[string]Limit{
		models.PlanFree:      {RequestsPerMinute: 1},
		models.PlanAnonymous: {RequestsPerMinute: 1},
	})
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "user-1", models.PlanFree)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "user-2", models.PlanFree)
	require.NoError(t, err)
	assert.True(t, allowed, "a different identifier has its own window")
}

func TestUnknownPlanFallsBackToAnonymous(t *testing.T) {
	limiter := newTestLimiter(t, map[string]Limit{
		models.PlanAnonymous: {RequestsPerMinute: 2},
	})

	limit := limiter.GetLimitForPlan("mystery")
	assert.Equal(t, 2, limit.RequestsPerMinute)
}

func TestResetLimit(t *testing.T) {
	limiter := newTestLimiter(t, map[string]Limit{
		models.PlanFree:      {RequestsPerMinute: 1},
		models.PlanAnonymous: {RequestsPerMinute: 1},
	})
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "user-1", models.PlanFree)
	require.NoError(t, err)

	allowed, err := limiter.Allow(ctx, "user-1", models.PlanFree)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, limiter.ResetLimit(ctx, "user-1"))

	allowed, err = limiter.Allow(ctx, "user-1", models.PlanFree)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMiddlewareSetsHeadersAndRejects(t *testing.T) {
	limiter := newTestLimiter(t, map[string]Limit{
		models.PlanAnonymous: {RequestsPerMinute: 1},
	})

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/phrases", nil)
	req.RemoteAddr = "203.0.113.7:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"x-forwarded-for single", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"x-forwarded-for list", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"x-real-ip", "10.0.0.1:1234", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"remote addr", "203.0.113.7:54321", nil, "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
