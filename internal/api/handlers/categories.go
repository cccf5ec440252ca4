package handlers

import (
	"net/http"

	"github.com/fluentphrases/backend/internal/auth"
	"github.com/fluentphrases/backend/internal/catalog"
	"github.com/fluentphrases/backend/internal/entitlement"
)

// CategoriesHandler serves the category catalog
type CategoriesHandler struct {
	gate *entitlement.Gate
}

// NewCategoriesHandler creates a new categories handler
func NewCategoriesHandler(gate *entitlement.Gate) *CategoriesHandler {
	return &CategoriesHandler{gate: gate}
}

// CategoryResponse is a category with its lock state for the current user
type CategoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Locked      bool   `json:"locked"`
}

// List returns all categories, marking which are locked for the caller.
// Anonymous and free callers see the same lock set.
// GET /api/v1/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	unlimited := false
	if user := auth.GetUser(r.Context()); user != nil {
		unlimited = user.Unlimited()
	}

	all := catalog.All()
	response := make([]CategoryResponse, len(all))
	for i, c := range all {
		response[i] = CategoryResponse{
			Name:        c.Name,
			Description: c.Description,
			Color:       c.Color,
			Locked:      !unlimited && !h.gate.IsFreeCategory(c.Name),
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": response,
	})
}
