package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"inkpress/internal/middleware"
	"inkpress/internal/service"
)

// Comments groups the comment HTTP handlers.
type Comments struct {
	comments *service.CommentService
}

// NewComments creates a new Comments handler group.
func NewComments(comments *service.CommentService) *Comments {
	return &Comments{comments: comments}
}

// List handles GET /comments. With ?postId it returns that post's
// approved comments; without it, the admin moderation view.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.CommentListInput{
		Page:  queryInt(q.Get("page")),
		Limit: queryInt(q.Get("limit")),
	}
	if v := q.Get("postId"); v != "" {
		postID, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid postId")
			return
		}
		in.PostID = &postID
	}

	page, err := h.comments.List(r.Context(), middleware.PrincipalFromCtx(r.Context()), in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create handles POST /comments.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID   uuid.UUID  `json:"postId"`
		Content  string     `json:"content"`
		ParentID *uuid.UUID `json:"parentId"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), service.CommentInput{
		PostID:   req.PostID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// Delete handles DELETE /comments/{id}.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.comments.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

// Like handles POST /comments/{id}/like.
func (h *Comments) Like(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	comment, err := h.comments.Like(r.Context(), middleware.PrincipalFromCtx(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// Moderate handles PATCH /comments/{id}/approval.
func (h *Comments) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	comment, err := h.comments.SetApproved(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, req.Approved)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
