// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
	"inkpress/internal/policy"
	"inkpress/internal/store"
)

// maxCommentLen bounds comment content length.
const maxCommentLen = 1000

// CommentService orchestrates the comment lifecycle.
type CommentService struct {
	comments CommentStore
	posts    PostStore
}

// NewCommentService creates a CommentService over the given stores.
func NewCommentService(comments CommentStore, posts PostStore) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// CommentInput carries the fields of a comment create request.
type CommentInput struct {
	PostID   uuid.UUID
	Content  string
	ParentID *uuid.UUID
}

// CommentPage is one page of a comment listing.
type CommentPage struct {
	Items      []models.Comment `json:"comments"`
	Pagination Pagination       `json:"pagination"`
}

// CommentListInput narrows a listing request.
type CommentListInput struct {
	PostID *uuid.UUID
	Page   int
	Limit  int
}

// Create validates and persists a comment by the principal against an
// existing post. Comments are auto-approved. A reply's parent must exist
// and belong to the same post.
func (s *CommentService) Create(ctx context.Context, p *policy.Principal, in CommentInput) (*models.Comment, error) {
	if !policy.Can(p, policy.CreateComment, nil) {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.Invalid("comment content is required", "content")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, apperr.Invalid("comment must be at most 1000 characters", "content")
	}
	if in.PostID == uuid.Nil {
		return nil, apperr.Invalid("postId is required", "postId")
	}

	post, err := s.posts.FindByID(ctx, in.PostID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	if post == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}

	if in.ParentID != nil {
		parent, err := s.comments.FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "parent comment lookup failed", err)
		}
		if parent == nil {
			return nil, apperr.New(apperr.NotFound, "parent comment not found")
		}
		if parent.PostID != in.PostID {
			return nil, apperr.Invalid("parent comment belongs to a different post", "parentId")
		}
	}

	created, err := s.comments.Create(ctx, &models.Comment{
		Content:  content,
		AuthorID: p.ID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
		Approved: true,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create comment failed", err)
	}
	return created, nil
}

// Delete removes a comment. Only admins may delete comments — authorship
// grants nothing here, unlike post deletion.
func (s *CommentService) Delete(ctx context.Context, p *policy.Principal, commentID uuid.UUID) error {
	if p == nil {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "comment lookup failed", err)
	}
	if comment == nil {
		return apperr.New(apperr.NotFound, "comment not found")
	}
	if !policy.Can(p, policy.DeleteComment, nil) {
		return apperr.New(apperr.Forbidden, "only admins may delete comments")
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "delete comment failed", err)
	}
	return nil
}

// List returns a page of comments. With a post filter it returns only
// that post's approved comments, open to any caller, in thread order.
// Without a post filter it returns every comment newest first — a
// moderation view restricted to admins.
func (s *CommentService) List(ctx context.Context, p *policy.Principal, in CommentListInput) (*CommentPage, error) {
	page, limit := normalizePaging(in.Page, in.Limit)

	f := store.CommentFilter{Page: page, Limit: limit}
	if in.PostID != nil {
		post, err := s.posts.FindByID(ctx, *in.PostID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
		}
		if post == nil {
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
		f.PostID = in.PostID
		f.ApprovedOnly = true
	} else if !policy.Can(p, policy.ListAllComments, nil) {
		// Bulk listing is a moderation surface. Non-admins get 401
		// whether or not they are signed in.
		return nil, apperr.New(apperr.Unauthorized, "admin access required")
	}

	items, total, err := s.comments.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list comments failed", err)
	}
	if items == nil {
		items = []models.Comment{}
	}
	return &CommentPage{Items: items, Pagination: paginate(page, limit, total)}, nil
}

// Like records a like on a comment. Any authenticated principal may like.
func (s *CommentService) Like(ctx context.Context, p *policy.Principal, commentID uuid.UUID) (*models.Comment, error) {
	if !policy.Can(p, policy.LikeComment, nil) {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "comment lookup failed", err)
	}
	if comment == nil {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}

	if err := s.comments.IncrementLikes(ctx, comment.ID); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "like comment failed", err)
	}
	comment.Likes++
	return comment, nil
}

// SetApproved toggles a comment's public visibility. Moderators and
// admins only.
func (s *CommentService) SetApproved(ctx context.Context, p *policy.Principal, commentID uuid.UUID, approved bool) (*models.Comment, error) {
	if p == nil {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}
	if !policy.Can(p, policy.ModerateComment, nil) {
		return nil, apperr.New(apperr.Forbidden, "moderator access required")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "comment lookup failed", err)
	}
	if comment == nil {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}

	if err := s.comments.SetApproved(ctx, comment.ID, approved); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "moderate comment failed", err)
	}
	comment.Approved = approved
	return comment, nil
}
