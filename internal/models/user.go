package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID               string    `json:"id" db:"id"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name" db:"last_name"`
	Email            string    `json:"email" db:"email"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	Plan             string    `json:"plan" db:"plan"`
	DailyPhraseCount int       `json:"daily_phrases_count" db:"daily_phrase_count"`
	LastPhrasesReset time.Time `json:"last_phrases_reset" db:"last_phrases_reset"`
	EmailVerified    bool      `json:"email_verified" db:"email_verified"`
	VerificationToken string   `json:"-" db:"verification_token"`
	ResetToken       string    `json:"-" db:"reset_token"`
	ResetExpires     time.Time `json:"-" db:"reset_expires"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Plan constants
const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanAdmin   = "admin"

	// PlanAnonymous is not a stored plan. It identifies unauthenticated
	// requests for rate limiting purposes.
	PlanAnonymous = "anonymous"
)

// IsValidPlan checks if a plan is valid
func IsValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPremium, PlanAdmin:
		return true
	default:
		return false
	}
}

// Unlimited reports whether the plan has no category or daily-count
// restrictions. The daily counter is not meaningful for these plans.
func (u *User) Unlimited() bool {
	return u.Plan == PlanPremium || u.Plan == PlanAdmin
}

// IsAdmin reports whether the user may manage content.
func (u *User) IsAdmin() bool {
	return u.Plan == PlanAdmin
}
