package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/fluentphrases/backend/internal/api/request"
	"github.com/fluentphrases/backend/internal/auth"
	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/entitlement"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/service"
)

// PhraseLister is the service surface the phrases handler needs
type PhraseLister interface {
	List(ctx context.Context, filter models.PhraseFilter) (*service.PhraseResult, error)
}

// PhrasesHandler serves the gated phrase catalog
type PhrasesHandler struct {
	phrases PhraseLister
	users   UserStore
	gate    *entitlement.Gate
}

// NewPhrasesHandler creates a new phrases handler
func NewPhrasesHandler(phrases PhraseLister, users UserStore, gate *entitlement.Gate) *PhrasesHandler {
	return &PhrasesHandler{
		phrases: phrases,
		users:   users,
		gate:    gate,
	}
}

// PhraseListResponse is the payload for a granted phrase list request
type PhraseListResponse struct {
	Phrases  []models.Phrase `json:"phrases"`
	Total    int             `json:"total"`
	UserInfo models.UserInfo `json:"userInfo"`
}

// List returns phrases the user is entitled to see
// GET /api/v1/phrases?language=English&category=all&limit=20&offset=0
func (h *PhrasesHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadFreshUser(w, r)
	if !ok {
		return
	}

	language := request.GetQueryString(r, "language", "")
	if language != "" && !models.IsValidLanguage(language) {
		writeError(w, http.StatusBadRequest, "invalid_language", "Unsupported language")
		return
	}
	category := request.GetQueryString(r, "category", entitlement.CategoryAll)

	// Stale counters from a previous day must never deny a request, so the
	// window is reconciled before any decision is made.
	if !h.reconcile(w, r, user) {
		return
	}

	access := h.gate.ResolveAccess(user, category)
	if !access.Granted {
		writeDenial(w, access)
		return
	}

	limit := h.gate.CheckDailyLimit(user)
	if !limit.Granted {
		writeDenial(w, limit)
		return
	}

	filter := models.PhraseFilter{
		Language:   language,
		Categories: access.CategoryFilter,
		Limit:      request.GetQueryIntWithRange(r, "limit", 20, 1, 100),
		Offset:     request.GetQueryInt(r, "offset", 0),
	}
	if category != "" && category != entitlement.CategoryAll {
		filter.Category = category
	}

	result, err := h.phrases.List(r.Context(), filter)
	if err != nil {
		log.Printf("[phrases] List error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to fetch phrases")
		return
	}

	payload := PhraseListResponse{
		Phrases: result.Phrases,
		Total:   result.Total,
		UserInfo: models.UserInfo{
			Role:              user.Plan,
			DailyPhrasesCount: user.DailyPhraseCount,
			RemainingToday:    h.gate.RemainingQuota(user),
		},
	}

	// The body varies per user (quota counters), so caching stays private.
	etag := cache.GetETag(payload)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=60")
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// Increment records one phrase view against the daily quota
// POST /api/v1/phrases/increment
func (h *PhrasesHandler) Increment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadFreshUser(w, r)
	if !ok {
		return
	}

	if !h.reconcile(w, r, user) {
		return
	}

	limit := h.gate.CheckDailyLimit(user)
	if !limit.Granted {
		writeDenial(w, limit)
		return
	}

	count, err := h.gate.RecordConsumption(r.Context(), user)
	if err != nil {
		var persistErr *entitlement.QuotaPersistError
		if errors.As(err, &persistErr) {
			log.Printf("[phrases] Increment persist error: %v", err)
			writeError(w, http.StatusServiceUnavailable, "quota_unavailable", "Could not record usage, please retry")
			return
		}
		log.Printf("[phrases] Increment error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to record usage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dailyPhrasesCount": count,
		"remaining_today":   h.gate.RemainingQuota(user),
	})
}

// loadFreshUser loads the authenticated user's current record. The context
// user carries claims only; quota decisions need the stored counter.
func (h *PhrasesHandler) loadFreshUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	ctxUser := auth.GetUser(r.Context())
	if ctxUser == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return nil, false
	}

	user, err := h.users.GetByID(r.Context(), ctxUser.ID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Account not found")
		return nil, false
	}
	return user, true
}

func (h *PhrasesHandler) reconcile(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	if err := h.gate.Reconcile(r.Context(), user); err != nil {
		log.Printf("[phrases] reconcile error: %v", err)
		writeError(w, http.StatusServiceUnavailable, "quota_unavailable", "Could not reconcile usage, please retry")
		return false
	}
	return true
}

// writeDenial writes a structured 403 for an entitlement denial. The payload
// names the reason so clients can render an upgrade prompt or a quota meter.
func writeDenial(w http.ResponseWriter, d entitlement.Decision) {
	message := "Access denied"
	switch d.Reason {
	case entitlement.ReasonCategoryLocked:
		message = "This category requires a premium subscription"
	case entitlement.ReasonDailyLimitReached:
		message = "Daily free limit reached, upgrade for unlimited access"
	}

	writeJSON(w, http.StatusForbidden, map[string]interface{}{
		"error":       string(d.Reason),
		"message":     message,
		"plan":        d.Plan,
		"daily_count": d.DailyCount,
		"daily_limit": d.DailyLimit,
	})
}
