package handlers

import (
	"net/http"
	"time"

	"github.com/fluentphrases/backend/internal/entitlement"
)

// UsageHandler reports the caller's daily quota consumption
type UsageHandler struct {
	users   UserStore
	gate    *entitlement.Gate
	phrases *PhrasesHandler
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(users UserStore, gate *entitlement.Gate) *UsageHandler {
	return &UsageHandler{
		users:   users,
		gate:    gate,
		phrases: &PhrasesHandler{users: users, gate: gate},
	}
}

// UsageResponse is the quota summary for the current user
type UsageResponse struct {
	Plan             string    `json:"plan"`
	DailyCount       int       `json:"daily_count"`
	DailyLimit       int       `json:"daily_limit"` // -1 means unlimited
	RemainingToday   int       `json:"remaining_today"`
	LastPhrasesReset time.Time `json:"last_phrases_reset"`
	FreeCategories   []string  `json:"free_categories"`
}

// Get returns the current quota state
// GET /api/v1/user/usage
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.phrases.loadFreshUser(w, r)
	if !ok {
		return
	}

	if !h.phrases.reconcile(w, r, user) {
		return
	}

	limit := h.gate.DailyLimit()
	if user.Unlimited() {
		limit = entitlement.QuotaUnlimited
	}

	writeJSON(w, http.StatusOK, UsageResponse{
		Plan:             user.Plan,
		DailyCount:       user.DailyPhraseCount,
		DailyLimit:       limit,
		RemainingToday:   h.gate.RemainingQuota(user),
		LastPhrasesReset: user.LastPhrasesReset,
		FreeCategories:   h.gate.FreeCategories(),
	})
}
