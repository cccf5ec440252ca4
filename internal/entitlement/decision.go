// Package entitlement decides, per request, whether a user may view content
// and keeps their daily view counter consistent with the current calendar
// day. All decisions are values; denial is a normal outcome, not an error.
package entitlement

// Reason identifies why access was denied
type Reason string

const (
	// ReasonCategoryLocked means the requested category is outside the
	// user's plan. Recoverable by upgrading or picking another category.
	ReasonCategoryLocked Reason = "category_locked"
	// ReasonDailyLimitReached means the user exhausted today's view
	// allowance. Recoverable the next calendar day or via upgrade.
	ReasonDailyLimitReached Reason = "daily_limit_reached"
)

// Decision is the outcome of an entitlement check
type Decision struct {
	Granted    bool
	Reason     Reason // set only when denied
	Plan       string
	DailyCount int
	DailyLimit int // -1 means unlimited
	// CategoryFilter is the allowlist the caller must apply to the content
	// query, even when the request asked for "all". Empty means
	// unrestricted.
	CategoryFilter []string
}
