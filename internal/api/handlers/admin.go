package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fluentphrases/backend/internal/api/request"
	"github.com/fluentphrases/backend/internal/catalog"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/repository"
)

// PhraseManager is the write surface for phrase administration
type PhraseManager interface {
	GetByID(ctx context.Context, id int64) (*models.Phrase, error)
	Create(ctx context.Context, p *models.Phrase) error
	Update(ctx context.Context, p *models.Phrase) error
	Delete(ctx context.Context, id int64) error
}

// ReadingManager is the write surface for reading administration
type ReadingManager interface {
	GetByID(ctx context.Context, id int64) (*models.Reading, error)
	Create(ctx context.Context, rd *models.Reading) error
	Update(ctx context.Context, rd *models.Reading) error
	Delete(ctx context.Context, id int64) error
}

// AdminHandler handles content management. All routes require the admin
// plan, enforced by middleware.
type AdminHandler struct {
	phrases  PhraseManager
	readings ReadingManager
	users    UserStore
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(phrases PhraseManager, readings ReadingManager, users UserStore) *AdminHandler {
	return &AdminHandler{
		phrases:  phrases,
		readings: readings,
		users:    users,
	}
}

// PhraseRequest is the create/update payload for a phrase
type PhraseRequest struct {
	TargetText     string `json:"target_text"`
	TranslatedText string `json:"translated_text"`
	Category       string `json:"category"`
	Language       string `json:"language"`
	IsFree         bool   `json:"is_free"`
}

func (req *PhraseRequest) validate() (string, bool) {
	if req.TargetText == "" || req.TranslatedText == "" {
		return "Both texts are required", false
	}
	if !catalog.IsValid(req.Category) {
		return "Unknown category", false
	}
	if !models.IsValidLanguage(req.Language) {
		return "Unsupported language", false
	}
	return "", true
}

// CreatePhrase handles POST /api/v1/admin/phrases
func (h *AdminHandler) CreatePhrase(w http.ResponseWriter, r *http.Request) {
	var req PhraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	phrase := &models.Phrase{
		TargetText:     req.TargetText,
		TranslatedText: req.TranslatedText,
		Category:       req.Category,
		Language:       req.Language,
		IsFree:         req.IsFree,
	}
	if err := h.phrases.Create(r.Context(), phrase); err != nil {
		log.Printf("[admin] CreatePhrase error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to create phrase")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"phrase": phrase})
}

// UpdatePhrase handles PUT /api/v1/admin/phrases/{id}
func (h *AdminHandler) UpdatePhrase(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetURLParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid phrase ID")
		return
	}

	var req PhraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	phrase := &models.Phrase{
		ID:             id,
		TargetText:     req.TargetText,
		TranslatedText: req.TranslatedText,
		Category:       req.Category,
		Language:       req.Language,
		IsFree:         req.IsFree,
	}
	if err := h.phrases.Update(r.Context(), phrase); err != nil {
		if errors.Is(err, repository.ErrPhraseNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Phrase not found")
			return
		}
		log.Printf("[admin] UpdatePhrase error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to update phrase")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"phrase": phrase})
}

// DeletePhrase handles DELETE /api/v1/admin/phrases/{id}
func (h *AdminHandler) DeletePhrase(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetURLParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid phrase ID")
		return
	}

	if err := h.phrases.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPhraseNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Phrase not found")
			return
		}
		log.Printf("[admin] DeletePhrase error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to delete phrase")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Phrase deleted"})
}

// ReadingRequest is the create/update payload for a reading
type ReadingRequest struct {
	Title              string `json:"title"`
	Category           string `json:"category"`
	EnglishText        string `json:"english_text"`
	SpanishTranslation string `json:"spanish_translation"`
	ImageURL           string `json:"image_url"`
}

func (req *ReadingRequest) validate() (string, bool) {
	if req.Title == "" || req.EnglishText == "" {
		return "Title and text are required", false
	}
	if !catalog.IsValid(req.Category) {
		return "Unknown category", false
	}
	return "", true
}

// CreateReading handles POST /api/v1/admin/readings
func (h *AdminHandler) CreateReading(w http.ResponseWriter, r *http.Request) {
	var req ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	reading := &models.Reading{
		Title:              req.Title,
		Category:           req.Category,
		EnglishText:        req.EnglishText,
		SpanishTranslation: req.SpanishTranslation,
		ImageURL:           req.ImageURL,
	}
	if err := h.readings.Create(r.Context(), reading); err != nil {
		log.Printf("[admin] CreateReading error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to create reading")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"reading": reading})
}

// UpdateReading handles PUT /api/v1/admin/readings/{id}
func (h *AdminHandler) UpdateReading(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetURLParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid reading ID")
		return
	}

	var req ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	reading := &models.Reading{
		ID:                 id,
		Title:              req.Title,
		Category:           req.Category,
		EnglishText:        req.EnglishText,
		SpanishTranslation: req.SpanishTranslation,
		ImageURL:           req.ImageURL,
	}
	if err := h.readings.Update(r.Context(), reading); err != nil {
		if errors.Is(err, repository.ErrReadingNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Reading not found")
			return
		}
		log.Printf("[admin] UpdateReading error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to update reading")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reading": reading})
}

// DeleteReading handles DELETE /api/v1/admin/readings/{id}
func (h *AdminHandler) DeleteReading(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetURLParamInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid reading ID")
		return
	}

	if err := h.readings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrReadingNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Reading not found")
			return
		}
		log.Printf("[admin] DeleteReading error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to delete reading")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Reading deleted"})
}

// SetPlanRequest changes a user's plan
type SetPlanRequest struct {
	Plan string `json:"plan"`
}

// SetUserPlan handles PUT /api/v1/admin/users/{id}/plan
func (h *AdminHandler) SetUserPlan(w http.ResponseWriter, r *http.Request) {
	userID := request.GetURLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	var req SetPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if !models.IsValidPlan(req.Plan) {
		writeError(w, http.StatusBadRequest, "invalid_plan", "Unknown plan")
		return
	}

	if err := h.users.SetPlan(r.Context(), userID, req.Plan); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		log.Printf("[admin] SetUserPlan error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to update plan")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Plan updated"})
}
