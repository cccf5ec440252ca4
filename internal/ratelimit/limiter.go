package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fluentphrases/backend/internal/auth"
	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/models"
)

// Limit defines rate limits for a plan
type Limit struct {
	RequestsPerMinute int `json:"requests_per_minute"`
}

// DefaultLimits defines the default rate limits per plan
var DefaultLimits = map[string]Limit{
	models.PlanFree:      {RequestsPerMinute: 100},
	models.PlanPremium:   {RequestsPerMinute: 300},
	models.PlanAdmin:     {RequestsPerMinute: 600},
	models.PlanAnonymous: {RequestsPerMinute: 30},
}

// RateLimitInfo contains rate limit information for a response
type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"` // Unix timestamp
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	cache  *cache.Redis
	limits map[string]Limit
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cache *cache.Redis) *RateLimiter {
	return &RateLimiter{
		cache:  cache,
		limits: DefaultLimits,
	}
}

// NewRateLimiterWithLimits creates a rate limiter with custom limits
func NewRateLimiterWithLimits(cache *cache.Redis, limits map[string]Limit) *RateLimiter {
	return &RateLimiter{
		cache:  cache,
		limits: limits,
	}
}

// Allow checks if a request should be allowed based on rate limits
func (r *RateLimiter) Allow(ctx context.Context, identifier string, plan string) (bool, error) {
	limit := r.GetLimitForPlan(plan)

	minuteKey := fmt.Sprintf("ratelimit:minute:%s", identifier)
	allowed, _, err := r.checkMinuteLimit(ctx, minuteKey, limit.RequestsPerMinute)
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// GetRemaining returns the remaining requests for an identifier
func (r *RateLimiter) GetRemaining(ctx context.Context, identifier string, plan string) (*RateLimitInfo, error) {
	limit := r.GetLimitForPlan(plan)

	minuteKey := fmt.Sprintf("ratelimit:minute:%s", identifier)
	_, remaining, err := r.getMinuteRemaining(ctx, minuteKey, limit.RequestsPerMinute)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reset := now.Truncate(time.Minute).Add(time.Minute).Unix()

	return &RateLimitInfo{
		Limit:     limit.RequestsPerMinute,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// Middleware returns HTTP middleware that enforces rate limits
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		identifier, plan := r.getIdentifierAndPlan(req)

		allowed, err := r.Allow(ctx, identifier, plan)
		if err != nil {
			// Allow the request on limiter failure so a Redis outage
			// does not take the API down with it.
			next.ServeHTTP(w, req)
			return
		}

		info, err := r.GetRemaining(ctx, identifier, plan)
		if err == nil {
			r.setRateLimitHeaders(w, info)
		}

		if !allowed {
			r.writeRateLimitExceeded(w, info)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// getIdentifierAndPlan extracts the identifier and plan from the request
func (r *RateLimiter) getIdentifierAndPlan(req *http.Request) (string, string) {
	user := auth.GetUser(req.Context())
	if user != nil {
		return user.ID, user.Plan
	}

	ip := getClientIP(req)
	return ip, models.PlanAnonymous
}

// setRateLimitHeaders sets rate limit headers on the response
func (r *RateLimiter) setRateLimitHeaders(w http.ResponseWriter, info *RateLimitInfo) {
	if info == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.Reset, 10))
}

// writeRateLimitExceeded writes a rate limit exceeded response
func (r *RateLimiter) writeRateLimitExceeded(w http.ResponseWriter, info *RateLimitInfo) {
	retryAfter := int64(60)
	if info != nil {
		retryAfter = info.Reset - time.Now().Unix()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	w.WriteHeader(http.StatusTooManyRequests)

	response := map[string]interface{}{
		"error":       "rate_limit_exceeded",
		"message":     "You have exceeded your rate limit. Please try again later.",
		"retry_after": retryAfter,
	}
	json.NewEncoder(w).Encode(response)
}

// getClientIP extracts the client IP from the request
func getClientIP(req *http.Request) string {
	xff := req.Header.Get("X-Forwarded-For")
	if xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	xri := req.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	ip := req.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
		if ip[i] == ']' {
			// IPv6 address
			break
		}
	}
	return ip
}

// GetLimits returns the configured limits
func (r *RateLimiter) GetLimits() map[string]Limit {
	return r.limits
}

// GetLimitForPlan returns the limit for a specific plan
func (r *RateLimiter) GetLimitForPlan(plan string) Limit {
	limit, ok := r.limits[plan]
	if !ok {
		return r.limits[models.PlanAnonymous]
	}
	return limit
}
