package entitlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fluentphrases/backend/internal/models"
)

// CategoryAll is the wildcard category meaning "no specific filter"
const CategoryAll = "all"

// QuotaUnlimited is the sentinel remaining-quota value for plans without a
// daily cap
const QuotaUnlimited = -1

// Config is the entitlement policy, injected once at construction so every
// endpoint enforces the same free-category set and daily limit.
type Config struct {
	FreeCategories []string
	DailyLimit     int
}

// CounterStore persists daily-counter mutations. The gate itself holds no
// state between calls; the user record is read fresh on each request.
type CounterStore interface {
	// ResetDailyWindow zeroes the counter and stamps now, iff the stored
	// reset timestamp falls on an earlier calendar day. Returns whether a
	// reset was applied. Safe to call repeatedly.
	ResetDailyWindow(ctx context.Context, userID string, now time.Time) (bool, error)
	// IncrementDailyCount adds one to the counter as a single atomic update
	// and returns the new value.
	IncrementDailyCount(ctx context.Context, userID string) (int, error)
}

// Gate evaluates plan and quota checks for content requests
type Gate struct {
	cfg   Config
	store CounterStore
	now   func() time.Time
}

// New creates a gate with the given policy and counter store
func New(cfg Config, store CounterStore) *Gate {
	return &Gate{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// WithClock overrides the gate's clock. Used by tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// DailyLimit returns the configured daily view limit
func (g *Gate) DailyLimit() int {
	return g.cfg.DailyLimit
}

// FreeCategories returns the configured free-visible category set
func (g *Gate) FreeCategories() []string {
	return append([]string(nil), g.cfg.FreeCategories...)
}

// IsFreeCategory checks whether a category is visible to free users
func (g *Gate) IsFreeCategory(category string) bool {
	for _, c := range g.cfg.FreeCategories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// ResolveAccess decides whether the user may view the requested category.
// Premium and admin plans are granted unconditionally with no filter. Free
// users are denied locked categories; otherwise granted with the content
// filter clamped to the free-visible set, even when they asked for "all".
func (g *Gate) ResolveAccess(u *models.User, requestedCategory string) Decision {
	if u.Unlimited() {
		return Decision{
			Granted:    true,
			Plan:       u.Plan,
			DailyCount: u.DailyPhraseCount,
			DailyLimit: QuotaUnlimited,
		}
	}

	if requestedCategory != "" && requestedCategory != CategoryAll && !g.IsFreeCategory(requestedCategory) {
		return Decision{
			Granted:    false,
			Reason:     ReasonCategoryLocked,
			Plan:       u.Plan,
			DailyCount: u.DailyPhraseCount,
			DailyLimit: g.cfg.DailyLimit,
		}
	}

	return Decision{
		Granted:        true,
		Plan:           u.Plan,
		DailyCount:     u.DailyPhraseCount,
		DailyLimit:     g.cfg.DailyLimit,
		CategoryFilter: g.FreeCategories(),
	}
}

// CheckDailyLimit decides whether the user has daily views left. Must run
// after Reconcile so a stale count from a previous day is never consulted.
// Independent of the category check; both must pass for a view to be served.
func (g *Gate) CheckDailyLimit(u *models.User) Decision {
	if u.Unlimited() {
		return Decision{
			Granted:    true,
			Plan:       u.Plan,
			DailyCount: u.DailyPhraseCount,
			DailyLimit: QuotaUnlimited,
		}
	}

	if u.DailyPhraseCount >= g.cfg.DailyLimit {
		return Decision{
			Granted:    false,
			Reason:     ReasonDailyLimitReached,
			Plan:       u.Plan,
			DailyCount: u.DailyPhraseCount,
			DailyLimit: g.cfg.DailyLimit,
		}
	}

	return Decision{
		Granted:    true,
		Plan:       u.Plan,
		DailyCount: u.DailyPhraseCount,
		DailyLimit: g.cfg.DailyLimit,
	}
}

// RemainingQuota returns how many views the user has left today, or
// QuotaUnlimited for premium/admin plans. Display only; never a gating
// decision point.
func (g *Gate) RemainingQuota(u *models.User) int {
	if u.Unlimited() {
		return QuotaUnlimited
	}
	remaining := g.cfg.DailyLimit - u.DailyPhraseCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reconcile applies the daily-window reset to the persisted record and the
// in-memory user. The store applies the reset conditionally on the stored
// reset date, so concurrent reconciles for the same user reset exactly once.
func (g *Gate) Reconcile(ctx context.Context, u *models.User) error {
	next, changed := ReconcileDailyWindow(*u, g.now())
	if !changed {
		return nil
	}
	if _, err := g.store.ResetDailyWindow(ctx, u.ID, next.LastPhrasesReset); err != nil {
		return &QuotaPersistError{Op: "reset", Err: err}
	}
	*u = next
	return nil
}

// RecordConsumption records one content view. A no-op for premium/admin
// plans. For free users it reconciles the daily window, then increments the
// persisted counter with a single atomic fetch-and-add, so two concurrent
// calls never under-count. Returns the updated count.
func (g *Gate) RecordConsumption(ctx context.Context, u *models.User) (int, error) {
	if u.Unlimited() {
		return u.DailyPhraseCount, nil
	}

	if err := g.Reconcile(ctx, u); err != nil {
		return 0, err
	}

	count, err := g.store.IncrementDailyCount(ctx, u.ID)
	if err != nil {
		return 0, &QuotaPersistError{Op: "increment", Err: err}
	}
	u.DailyPhraseCount = count
	return count, nil
}

// QuotaPersistError reports that a reconciled or incremented counter could
// not be durably recorded. The access decision is already computed; callers
// may retry the write without re-deciding.
type QuotaPersistError struct {
	Op  string
	Err error
}

func (e *QuotaPersistError) Error() string {
	return fmt.Sprintf("quota %s not persisted: %v", e.Op, e.Err)
}

func (e *QuotaPersistError) Unwrap() error {
	return e.Err
}
