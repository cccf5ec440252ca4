package entitlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentphrases/backend/internal/models"
)

// fakeCounterStore keeps counters in memory. Increments hold a mutex so the
// fetch-and-add contract of the real store is preserved under concurrency.
type fakeCounterStore struct {
	mu       sync.Mutex
	counts   map[string]int
	resets   map[string]time.Time
	incErr   error
	resetErr error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts: make(map[string]int),
		resets: make(map[string]time.Time),
	}
}

func (s *fakeCounterStore) ResetDailyWindow(_ context.Context, userID string, now time.Time) (bool, error) {
	if s.resetErr != nil {
		return false, s.resetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.resets[userID]; ok && !DayChanged(last, now) {
		return false, nil
	}
	s.counts[userID] = 0
	s.resets[userID] = now
	return true, nil
}

func (s *fakeCounterStore) IncrementDailyCount(_ context.Context, userID string) (int, error) {
	if s.incErr != nil {
		return 0, s.incErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID]++
	return s.counts[userID], nil
}

func testConfig() Config {
	return Config{
		FreeCategories: []string{"Conversations", "Technology"},
		DailyLimit:     5,
	}
}

func freeUser(count int) *models.User {
	return &models.User{
		ID:               "user-1",
		Plan:             models.PlanFree,
		DailyPhraseCount: count,
		LastPhrasesReset: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestResolveAccessFreeUser(t *testing.T) {
	gate := New(testConfig(), newFakeCounterStore())

	tests := []struct {
		name        string
		category    string
		wantGranted bool
	}{
		{"no category", "", true},
		{"all wildcard", "all", true},
		{"free category", "Conversations", true},
		{"free category case-insensitive", "technology", true},
		{"locked category", "Entertainment", false},
		{"another locked category", "Literature", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.ResolveAccess(freeUser(2), tt.category)
			assert.Equal(t, tt.wantGranted, d.Granted)
			if tt.wantGranted {
				// Free users always get a filter clamped to the free set,
				// even when they asked for everything.
				assert.ElementsMatch(t, []string{"Conversations", "Technology"}, d.CategoryFilter)
			} else {
				assert.Equal(t, ReasonCategoryLocked, d.Reason)
				assert.Equal(t, models.PlanFree, d.Plan)
				assert.Equal(t, 2, d.DailyCount)
			}
		})
	}
}

func TestResolveAccessUnlimitedPlans(t *testing.T) {
	gate := New(testConfig(), newFakeCounterStore())

	for _, plan := range []string{models.PlanPremium, models.PlanAdmin} {
		for _, category := range []string{"", "all", "Conversations", "Entertainment", "Irregular Verbs"} {
			u := &models.User{ID: "u", Plan: plan}
			d := gate.ResolveAccess(u, category)
			assert.True(t, d.Granted, "plan=%s category=%q", plan, category)
			assert.Empty(t, d.CategoryFilter, "plan=%s category=%q", plan, category)
		}
	}
}

func TestCheckDailyLimit(t *testing.T) {
	gate := New(testConfig(), newFakeCounterStore())

	assert.True(t, gate.CheckDailyLimit(freeUser(0)).Granted)
	assert.True(t, gate.CheckDailyLimit(freeUser(4)).Granted)

	d := gate.CheckDailyLimit(freeUser(5))
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonDailyLimitReached, d.Reason)
	assert.Equal(t, 5, d.DailyCount)
	assert.Equal(t, 5, d.DailyLimit)

	// Over the limit is still just "limit reached"
	assert.False(t, gate.CheckDailyLimit(freeUser(9)).Granted)

	// Unlimited plans never hit the limit regardless of count
	premium := &models.User{Plan: models.PlanPremium, DailyPhraseCount: 1000}
	assert.True(t, gate.CheckDailyLimit(premium).Granted)
}

func TestRemainingQuota(t *testing.T) {
	gate := New(testConfig(), newFakeCounterStore())

	assert.Equal(t, 5, gate.RemainingQuota(freeUser(0)))
	assert.Equal(t, 1, gate.RemainingQuota(freeUser(4)))
	assert.Equal(t, 0, gate.RemainingQuota(freeUser(5)))
	// Never negative, even if the stored count overshot the limit
	assert.Equal(t, 0, gate.RemainingQuota(freeUser(12)))

	premium := &models.User{Plan: models.PlanPremium, DailyPhraseCount: 3}
	assert.Equal(t, QuotaUnlimited, gate.RemainingQuota(premium))
}

func TestRecordConsumptionCountsFreeUsers(t *testing.T) {
	store := newFakeCounterStore()
	gate := New(testConfig(), store)

	u := freeUser(0)
	store.resets["user-1"] = u.LastPhrasesReset
	gate.WithClock(func() time.Time { return time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC) })

	for i := 1; i <= 3; i++ {
		count, err := gate.RecordConsumption(context.Background(), u)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.Equal(t, i, u.DailyPhraseCount)
	}
}

func TestRecordConsumptionNoOpForUnlimitedPlans(t *testing.T) {
	store := newFakeCounterStore()
	gate := New(testConfig(), store)

	for _, plan := range []string{models.PlanPremium, models.PlanAdmin} {
		u := &models.User{ID: "u-" + plan, Plan: plan, DailyPhraseCount: 2}
		for i := 0; i < 10; i++ {
			count, err := gate.RecordConsumption(context.Background(), u)
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		}
		assert.Zero(t, store.counts["u-"+plan])
	}
}

func TestDailyLimitScenario(t *testing.T) {
	// Free user with limit 5 consumes 5 views on day D; the 6th content
	// request that day is denied. The same request on day D+1 is granted.
	store := newFakeCounterStore()
	gate := New(testConfig(), store)

	dayD := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	gate.WithClock(func() time.Time { return dayD })

	u := freeUser(0)
	u.LastPhrasesReset = dayD
	store.resets[u.ID] = dayD

	for i := 0; i < 5; i++ {
		_, err := gate.RecordConsumption(context.Background(), u)
		require.NoError(t, err)
	}

	require.NoError(t, gate.Reconcile(context.Background(), u))
	d := gate.CheckDailyLimit(u)
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonDailyLimitReached, d.Reason)

	// Day D+1: reconcile resets the window and the request passes
	dayNext := dayD.Add(24 * time.Hour)
	gate.WithClock(func() time.Time { return dayNext })

	require.NoError(t, gate.Reconcile(context.Background(), u))
	assert.Equal(t, 0, u.DailyPhraseCount)
	assert.True(t, gate.CheckDailyLimit(u).Granted)
}

func TestRecordConsumptionConcurrent(t *testing.T) {
	// Two concurrent consumptions starting from count=3 must land on 5.
	// The store's atomic fetch-and-add is what prevents the lost update.
	store := newFakeCounterStore()
	gate := New(testConfig(), store)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	gate.WithClock(func() time.Time { return now })

	store.counts["user-1"] = 3
	store.resets["user-1"] = now

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := freeUser(3)
			u.LastPhrasesReset = now
			_, err := gate.RecordConsumption(context.Background(), u)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, store.counts["user-1"])
}

func TestRecordConsumptionPersistFailure(t *testing.T) {
	store := newFakeCounterStore()
	store.incErr = errors.New("connection reset")
	gate := New(testConfig(), store)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	gate.WithClock(func() time.Time { return now })

	u := freeUser(1)
	u.LastPhrasesReset = now

	_, err := gate.RecordConsumption(context.Background(), u)
	require.Error(t, err)

	var persistErr *QuotaPersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "increment", persistErr.Op)
	assert.ErrorIs(t, err, store.incErr)

	// The in-memory count is untouched; the caller may retry the write.
	assert.Equal(t, 1, u.DailyPhraseCount)
}

func TestReconcilePersistFailure(t *testing.T) {
	store := newFakeCounterStore()
	store.resetErr = errors.New("write timeout")
	gate := New(testConfig(), store)

	gate.WithClock(func() time.Time { return time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC) })

	u := freeUser(4) // last reset on March 10
	err := gate.Reconcile(context.Background(), u)
	require.Error(t, err)

	var persistErr *QuotaPersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "reset", persistErr.Op)

	// User is not mutated when the reset could not be recorded
	assert.Equal(t, 4, u.DailyPhraseCount)
}
