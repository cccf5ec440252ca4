package entitlement

import (
	"time"

	"github.com/fluentphrases/backend/internal/models"
)

// CalendarDate truncates t to its UTC calendar date. All day-boundary
// comparisons in the quota logic go through this single definition.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayChanged reports whether now falls on a strictly later UTC calendar
// date than last. Comparing dates rather than elapsed hours means a user
// active at 23:59 and again at 00:01 rolls over exactly once.
func DayChanged(last, now time.Time) bool {
	return CalendarDate(now).After(CalendarDate(last))
}

// ReconcileDailyWindow returns a copy of u with the daily counter reset to
// zero and the reset timestamp updated, iff the calendar date of now is
// strictly later than that of the last reset. Otherwise u is returned
// unchanged. Applying it twice with the same now is a no-op the second time.
func ReconcileDailyWindow(u models.User, now time.Time) (models.User, bool) {
	if !DayChanged(u.LastPhrasesReset, now) {
		return u, false
	}
	u.DailyPhraseCount = 0
	u.LastPhrasesReset = now
	return u, true
}
