package handlers

import (
	"net/http"

	"inkpress/internal/service"
)

// Newsletter groups the newsletter HTTP handlers. Both endpoints are
// open to anonymous callers.
type Newsletter struct {
	newsletter *service.NewsletterService
}

// NewNewsletter creates a new Newsletter handler group.
func NewNewsletter(newsletter *service.NewsletterService) *Newsletter {
	return &Newsletter{newsletter: newsletter}
}

// Subscribe handles POST /newsletter.
func (h *Newsletter) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.newsletter.Subscribe(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "subscribed successfully"})
}

// Unsubscribe handles POST /newsletter/unsubscribe.
func (h *Newsletter) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.newsletter.Unsubscribe(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "unsubscribed successfully"})
}
