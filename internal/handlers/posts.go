// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/middleware"
	"inkpress/internal/service"
)

// Posts groups the post HTTP handlers.
type Posts struct {
	posts *service.PostService
}

// NewPosts creates a new Posts handler group.
func NewPosts(posts *service.PostService) *Posts {
	return &Posts{posts: posts}
}

// postRequest is the JSON body for create and update. Image and
// category accept both naming conventions clients use.
type postRequest struct {
	Title      *string    `json:"title"`
	Content    *string    `json:"content"`
	Excerpt    *string    `json:"excerpt"`
	ImageURL   *string    `json:"imageUrl"`
	Image      *string    `json:"image"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Category   *uuid.UUID `json:"category"`
	Tags       []string   `json:"tags"`
	Published  *bool      `json:"published"`
	Featured   *bool      `json:"featured"`
}

// normalize folds the alias fields into their canonical counterparts.
// The canonical name wins when both are present.
func (req *postRequest) normalize() {
	if req.ImageURL == nil {
		req.ImageURL = req.Image
	}
	if req.CategoryID == nil {
		req.CategoryID = req.Category
	}
}

// List handles GET /posts.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	in := service.PostListInput{
		CategorySlug: q.Get("category"),
		Page:         queryInt(q.Get("page")),
		Limit:        queryInt(q.Get("limit")),
	}
	if v := q.Get("published"); v != "" {
		published := v == "true"
		in.Published = &published
	}
	if v := q.Get("featured"); v == "true" {
		featured := true
		in.Featured = &featured
	}

	page, err := h.posts.List(r.Context(), middleware.PrincipalFromCtx(r.Context()), in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetBySlug handles GET /posts/{slug}.
func (h *Posts) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), middleware.PrincipalFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Create handles POST /posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.normalize()

	in := service.PostInput{
		Excerpt:   req.Excerpt,
		ImageURL:  req.ImageURL,
		Tags:      req.Tags,
		Published: req.Published,
		Featured:  req.Featured,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Content != nil {
		in.Content = *req.Content
	}
	if req.CategoryID != nil {
		in.CategoryID = *req.CategoryID
	}

	post, err := h.posts.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Update handles PUT /posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req postRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.normalize()

	post, err := h.posts.Update(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, service.PostUpdateInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
		Published:  req.Published,
		Featured:   req.Featured,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.posts.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// Like handles POST /posts/{id}/like.
func (h *Posts) Like(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	post, err := h.posts.Like(r.Context(), middleware.PrincipalFromCtx(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// queryInt parses a positive integer query value, zero when absent or bad.
func queryInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
