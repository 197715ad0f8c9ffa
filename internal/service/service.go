// Package service implements the content lifecycle: every create, update,
// delete, and list operation on posts, comments, categories, and newsletter
// subscriptions flows through here. Services validate input, consult the
// authorization policy, and translate store failures into the application
// error taxonomy. Handlers never touch stores directly.
package service

import (
	"context"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/store"
)

// PostStore is the persistence surface the post service depends on.
// *store.PostStore satisfies it; tests substitute an in-memory fake.
type PostStore interface {
	List(ctx context.Context, f store.PostFilter) ([]models.Post, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	IncrementLikes(ctx context.Context, id uuid.UUID) error
}

// CommentStore is the persistence surface the comment service depends on.
type CommentStore interface {
	List(ctx context.Context, f store.CommentFilter) ([]models.Comment, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	IncrementLikes(ctx context.Context, id uuid.UUID) error
}

// CategoryStore is the persistence surface the category service depends on.
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}

// NewsletterStore is the persistence surface the newsletter service depends on.
type NewsletterStore interface {
	FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error)
	Create(ctx context.Context, email string) (*models.NewsletterSubscription, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*models.NewsletterSubscription, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// UserStore is the persistence surface the stats service depends on.
type UserStore interface {
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// paginate normalizes page/limit and computes the page count for a total.
func paginate(page, limit, total int) Pagination {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// normalizePaging clamps page and limit to sane bounds.
func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
