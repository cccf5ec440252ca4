package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/fluentphrases/backend/internal/api/request"
	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/entitlement"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/service"
)

// ReadingLister is the service surface the readings handler needs
type ReadingLister interface {
	List(ctx context.Context, filter models.ReadingFilter) (*service.ReadingResult, error)
	GetByID(ctx context.Context, id int64) (*models.Reading, error)
}

// ReadingsHandler serves the gated reading catalog. Readings share the
// phrase quota; viewing either counts against the same daily allowance.
type ReadingsHandler struct {
	readings ReadingLister
	users    UserStore
	gate     *entitlement.Gate
	phrases  *PhrasesHandler
}

// NewReadingsHandler creates a new readings handler
func NewReadingsHandler(readings ReadingLister, users UserStore, gate *entitlement.Gate) *ReadingsHandler {
	return &ReadingsHandler{
		readings: readings,
		users:    users,
		gate:     gate,
		phrases:  &PhrasesHandler{users: users, gate: gate},
	}
}

// ReadingListResponse is the payload for a granted reading list request
type ReadingListResponse struct {
	Readings []models.Reading `json:"readings"`
	Total    int              `json:"total"`
	UserInfo models.UserInfo  `json:"userInfo"`
}

// List returns readings the user is entitled to see
// GET /api/v1/readings?category=all&limit=20&offset=0
func (h *ReadingsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.phrases.loadFreshUser(w, r)
	if !ok {
		return
	}

	category := request.GetQueryString(r, "category", entitlement.CategoryAll)

	if !h.phrases.reconcile(w, r, user) {
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

	filter := models.ReadingFilter{
		Categories: access.CategoryFilter,
		Limit:      request.GetQueryIntWithRange(r, "limit", 20, 1, 100),
		Offset:     request.GetQueryInt(r, "offset", 0),
	}
	if category != "" && category != entitlement.CategoryAll {
		filter.Category = category
	}

	result, err := h.readings.List(r.Context(), filter)
	if err != nil {
		log.Printf("[readings] List error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to fetch readings")
		return
	}

	payload := ReadingListResponse{
		Readings: result.Readings,
		Total:    result.Total,
		UserInfo: models.UserInfo{
			Role:              user.Plan,
			DailyPhrasesCount: user.DailyPhraseCount,
			RemainingToday:    h.gate.RemainingQuota(user),
		},
	}

	etag := cache.GetETag(payload)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=60")
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// Get returns a single reading, subject to the same gating as the list
// GET /api/v1/readings/{id}
func (h *ReadingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.phrases.loadFreshUser(w, r)
	if !ok {
		return
	}

	id, err := request.GetURLParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid reading ID")
		return
	}

	if !h.phrases.reconcile(w, r, user) {
		return
	}

	reading, err := h.readings.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Reading not found")
		return
	}

	access := h.gate.ResolveAccess(user, reading.Category)
	if !access.Granted {
		writeDenial(w, access)
		return
	}

	limit := h.gate.CheckDailyLimit(user)
	if !limit.Granted {
		writeDenial(w, limit)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reading": reading,
		"userInfo": models.UserInfo{
			Role:              user.Plan,
			DailyPhrasesCount: user.DailyPhraseCount,
			RemainingToday:    h.gate.RemainingQuota(user),
		},
	})
}
