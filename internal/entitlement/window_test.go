package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fluentphrases/backend/internal/models"
)

func TestCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)

	// 23:30 local on Jan 1 is 04:30 UTC on Jan 2
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)
	got := CalendarDate(ts)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestDayChanged(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{
			name: "same instant",
			last: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			now:  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "later the same day",
			last: time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC),
			now:  time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
			want: false,
		},
		{
			name: "two minutes across midnight",
			last: time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
			now:  time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "exactly midnight",
			last: time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC),
			now:  time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "many days later",
			last: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			now:  time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "clock skew backwards",
			last: time.Date(2024, 3, 11, 0, 5, 0, 0, time.UTC),
			now:  time.Date(2024, 3, 10, 23, 55, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayChanged(tt.last, tt.now))
		})
	}
}

func TestReconcileDailyWindowResetsOnNewDay(t *testing.T) {
	user := models.User{
		ID:               "u1",
		Plan:             models.PlanFree,
		DailyPhraseCount: 4,
		LastPhrasesReset: time.Date(2024, 3, 10, 22, 15, 0, 0, time.UTC),
	}
	now := time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)

	got, changed := ReconcileDailyWindow(user, now)
	assert.True(t, changed)
	assert.Equal(t, 0, got.DailyPhraseCount)
	assert.Equal(t, now, got.LastPhrasesReset)

	// Original value is untouched
	assert.Equal(t, 4, user.DailyPhraseCount)
}

func TestReconcileDailyWindowSameDayNoOp(t *testing.T) {
	user := models.User{
		ID:               "u1",
		Plan:             models.PlanFree,
		DailyPhraseCount: 4,
		LastPhrasesReset: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)

	got, changed := ReconcileDailyWindow(user, now)
	assert.False(t, changed)
	assert.Equal(t, user, got)
}

func TestReconcileDailyWindowIdempotent(t *testing.T) {
	user := models.User{
		ID:               "u1",
		Plan:             models.PlanFree,
		DailyPhraseCount: 7,
		LastPhrasesReset: time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

	once, changed := ReconcileDailyWindow(user, now)
	assert.True(t, changed)

	twice, changedAgain := ReconcileDailyWindow(once, now)
	assert.False(t, changedAgain)
	assert.Equal(t, once, twice)
}
