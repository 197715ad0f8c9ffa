package handlers

import (
	"net/http"

	"inkpress/internal/middleware"
	"inkpress/internal/service"
)

// Categories groups the category HTTP handlers.
type Categories struct {
	categories *service.CategoryService
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories *service.CategoryService) *Categories {
	return &Categories{categories: categories}
}

// List handles GET /categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": items})
}

// Create handles POST /categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ColorTag    string `json:"colorTag"`
		Color       string `json:"color"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ColorTag == "" {
		req.ColorTag = req.Color
	}

	category, err := h.categories.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ColorTag:    req.ColorTag,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}
