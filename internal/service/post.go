// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"inkpress/internal/apperr"
	"inkpress/internal/markdown"
	"inkpress/internal/models"
	"inkpress/internal/policy"
	"inkpress/internal/slug"
	"inkpress/internal/store"
)

// Validation limits for post fields.
const (
	minTitleLen   = 5
	maxTitleLen   = 200
	maxExcerptLen = 500
)

// PostService orchestrates the post lifecycle.
type PostService struct {
	posts      PostStore
	categories CategoryStore
}

// NewPostService creates a PostService over the given stores.
func NewPostService(posts PostStore, categories CategoryStore) *PostService {
	return &PostService{posts: posts, categories: categories}
}

// PostInput carries the fields of a create request. Optional fields are
// pointers; nil means "not provided".
type PostInput struct {
	Title      string
	Content    string
	Excerpt    *string
	ImageURL   *string
	CategoryID uuid.UUID
	Tags       []string
	Published  *bool
	Featured   *bool
}

// PostUpdateInput carries the fields of an update request. Every field is
// optional: nil pointers (and a nil Tags slice) retain the stored value.
// A non-nil Tags slice replaces the tag set wholesale.
type PostUpdateInput struct {
	Title      *string
	Content    *string
	Excerpt    *string
	ImageURL   *string
	CategoryID *uuid.UUID
	Tags       []string
	Published  *bool
	Featured   *bool
}

// PostPage is one page of a post listing.
type PostPage struct {
	Items      []models.Post `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}

// PostListInput narrows a listing request.
type PostListInput struct {
	Published    *bool
	Featured     *bool
	CategorySlug string
	Slug         string
	Page         int
	Limit        int
}

// validateTitle checks title presence and length bounds.
func validateTitle(title string) *apperr.Error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.Invalid("title is required", "title")
	}
	n := utf8.RuneCountInString(title)
	if n < minTitleLen || n > maxTitleLen {
		return apperr.Invalid("title must be between 5 and 200 characters", "title")
	}
	return nil
}

// Create validates input, derives a unique slug, and persists a new post
// authored by the principal. New posts default to unpublished drafts.
func (s *PostService) Create(ctx context.Context, p *policy.Principal, in PostInput) (*models.Post, error) {
	if p == nil {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}
	if !policy.Can(p, policy.CreatePost, nil) {
		return nil, apperr.New(apperr.Forbidden, "not allowed to create posts")
	}

	var fields []string
	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, "title")
	}
	if strings.TrimSpace(in.Content) == "" {
		fields = append(fields, "content")
	}
	if in.CategoryID == uuid.Nil {
		fields = append(fields, "category")
	}
	if len(fields) > 0 {
		return nil, apperr.Invalid("missing required fields", fields...)
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.Excerpt != nil && utf8.RuneCountInString(*in.Excerpt) > maxExcerptLen {
		return nil, apperr.Invalid("excerpt must be at most 500 characters", "excerpt")
	}

	category, err := s.categories.FindByID(ctx, in.CategoryID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "category lookup failed", err)
	}
	if category == nil {
		return nil, apperr.Invalid("category does not exist", "category")
	}

	postSlug := slug.Generate(in.Title)
	if postSlug == "" {
		return nil, apperr.Invalid("title does not produce a valid slug", "title")
	}
	taken, err := s.posts.SlugExists(ctx, postSlug, uuid.Nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "slug check failed", err)
	}
	if taken {
		return nil, apperr.Newf(apperr.Conflict, "a post with slug %q already exists", postSlug)
	}

	post := &models.Post{
		Title:      strings.TrimSpace(in.Title),
		Slug:       postSlug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		ImageURL:   in.ImageURL,
		AuthorID:   p.ID,
		CategoryID: in.CategoryID,
		Tags:       in.Tags,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if in.Featured != nil {
		post.Featured = *in.Featured
	}

	created, err := s.posts.Create(ctx, post)
	if errors.Is(err, store.ErrConflict) {
		// A racing create won the unique index; same outcome as the pre-check.
		return nil, apperr.Newf(apperr.Conflict, "a post with slug %q already exists", postSlug)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create post failed", err)
	}
	return created, nil
}

// Update applies a partial update to a post. Only the author or an admin
// may update; the slug is regenerated only when the title text actually
// changed, so editing unrelated fields never moves a post's URL.
func (s *PostService) Update(ctx context.Context, p *policy.Principal, postID uuid.UUID, in PostUpdateInput) (*models.Post, error) {
	if p == nil {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	if post == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	if !policy.Can(p, policy.UpdatePost, post) {
		return nil, apperr.New(apperr.Forbidden, "only the author or an admin may update this post")
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		newTitle := strings.TrimSpace(*in.Title)
		if newTitle != post.Title {
			newSlug := slug.Generate(newTitle)
			if newSlug == "" {
				return nil, apperr.Invalid("title does not produce a valid slug", "title")
			}
			taken, err := s.posts.SlugExists(ctx, newSlug, post.ID)
			if err != nil {
				return nil, apperr.Wrap(apperr.Internal, "slug check failed", err)
			}
			if taken {
				return nil, apperr.Newf(apperr.Conflict, "a post with slug %q already exists", newSlug)
			}
			post.Slug = newSlug
		}
		post.Title = newTitle
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperr.Invalid("content cannot be blank", "content")
		}
		post.Content = *in.Content
	}
	if in.Excerpt != nil {
		if utf8.RuneCountInString(*in.Excerpt) > maxExcerptLen {
			return nil, apperr.Invalid("excerpt must be at most 500 characters", "excerpt")
		}
		post.Excerpt = in.Excerpt
	}
	if in.ImageURL != nil {
		post.ImageURL = in.ImageURL
	}
	if in.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "category lookup failed", err)
		}
		if category == nil {
			return nil, apperr.Invalid("category does not exist", "category")
		}
		post.CategoryID = *in.CategoryID
	}
	if in.Tags != nil {
		post.Tags = in.Tags
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if in.Featured != nil {
		post.Featured = *in.Featured
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Newf(apperr.Conflict, "a post with slug %q already exists", post.Slug)
		}
		return nil, apperr.Wrap(apperr.Internal, "update post failed", err)
	}
	return s.posts.FindByID(ctx, post.ID)
}

// Delete hard-deletes a post. Only the author or an admin may delete.
func (s *PostService) Delete(ctx context.Context, p *policy.Principal, postID uuid.UUID) error {
	if p == nil {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	if post == nil {
		return apperr.New(apperr.NotFound, "post not found")
	}
	if !policy.Can(p, policy.DeletePost, post) {
		return apperr.New(apperr.Forbidden, "only the author or an admin may delete this post")
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "delete post failed", err)
	}
	return nil
}

// List returns a page of posts, newest first. Published posts are open to
// any caller. Requesting drafts (published=false) needs an authenticated
// principal, and non-admins only ever see their own drafts; anonymous
// callers always get the published view regardless of the filter.
func (s *PostService) List(ctx context.Context, p *policy.Principal, in PostListInput) (*PostPage, error) {
	page, limit := normalizePaging(in.Page, in.Limit)

	published := true
	var authorID *uuid.UUID
	if in.Published != nil && !*in.Published && p != nil {
		// Drafts requested: admins see all drafts, everyone else only
		// their own. Anonymous callers keep the published view.
		published = false
		if p.Role != models.RoleAdmin {
			authorID = &p.ID
		}
	}

	f := store.PostFilter{
		Published: &published,
		Featured:  in.Featured,
		AuthorID:  authorID,
		Slug:      in.Slug,
		Page:      page,
		Limit:     limit,
	}

	if in.CategorySlug != "" {
		category, err := s.categories.FindBySlug(ctx, in.CategorySlug)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "category lookup failed", err)
		}
		if category == nil {
			return &PostPage{Items: []models.Post{}, Pagination: paginate(page, limit, 0)}, nil
		}
		f.CategoryID = &category.ID
	}

	items, total, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list posts failed", err)
	}
	if items == nil {
		items = []models.Post{}
	}
	return &PostPage{Items: items, Pagination: paginate(page, limit, total)}, nil
}

// GetBySlug returns a single post with its content rendered to HTML.
// Published posts are public and count a view; drafts resolve only for
// their author or an admin and are NotFound for everyone else.
func (s *PostService) GetBySlug(ctx context.Context, p *policy.Principal, postSlug string) (*models.Post, error) {
	post, err := s.posts.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	if post == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}

	if !post.Published {
		// Drafts are invisible to everyone but the author and admins.
		if p == nil || (!post.IsAuthoredBy(p.ID) && p.Role != models.RoleAdmin) {
			return nil, apperr.New(apperr.NotFound, "post not found")
		}
	} else if p == nil || !post.IsAuthoredBy(p.ID) {
		if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
			slog.Warn("view counter update failed", "post", post.ID, "error", err)
		} else {
			post.Views++
		}
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		slog.Warn("markdown render failed", "post", post.ID, "error", err)
	} else {
		post.ContentHTML = html
	}
	return post, nil
}

// Like records a like on a post. Any authenticated principal may like.
func (s *PostService) Like(ctx context.Context, p *policy.Principal, postID uuid.UUID) (*models.Post, error) {
	if !policy.Can(p, policy.LikePost, nil) {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	if post == nil {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}

	if err := s.posts.IncrementLikes(ctx, post.ID); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "like post failed", err)
	}
	post.Likes++
	return post, nil
}
