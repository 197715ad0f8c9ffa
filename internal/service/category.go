package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
	"inkpress/internal/policy"
	"inkpress/internal/slug"
	"inkpress/internal/store"
)

// Validation limits for category fields.
const (
	minCategoryNameLen = 2
	maxCategoryNameLen = 50
	maxDescriptionLen  = 200
	defaultColorTag    = "#6b7280"
)

// hexColor matches a six-digit hex color tag like "#1a2b3c".
var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// defaultCategories is seeded when the collection is empty at first read.
var defaultCategories = []models.Category{
	{Name: "Technology", Description: "News and commentary on the tech industry", ColorTag: "#3b82f6"},
	{Name: "Programming", Description: "Languages, tools, and software craft", ColorTag: "#8b5cf6"},
	{Name: "Web Development", Description: "Frontend, backend, and everything between", ColorTag: "#06b6d4"},
	{Name: "Design", Description: "Visual design, UX, and product thinking", ColorTag: "#ec4899"},
	{Name: "Tutorial", Description: "Step-by-step guides and walkthroughs", ColorTag: "#22c55e"},
	{Name: "Career", Description: "Growth, hiring, and working in tech", ColorTag: "#f59e0b"},
	{Name: "Productivity", Description: "Workflows, habits, and tooling", ColorTag: "#14b8a6"},
	{Name: "Opinion", Description: "Essays and personal takes", ColorTag: "#ef4444"},
}

// CategoryService manages categories and their lazy default seeding.
type CategoryService struct {
	categories CategoryStore
}

// NewCategoryService creates a CategoryService over the given store.
func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// CategoryInput carries the fields of a category create request.
type CategoryInput struct {
	Name        string
	Description string
	ColorTag    string
}

// List returns all categories with post counts, seeding the default set
// when the collection is empty at first read.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	count, err := s.categories.Count(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "count categories failed", err)
	}
	if count == 0 {
		s.seedDefaults(ctx)
	}

	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list categories failed", err)
	}
	if items == nil {
		items = []models.Category{}
	}
	return items, nil
}

// seedDefaults inserts the default category set. Conflicts are ignored:
// two concurrent first reads may race, and the slug index keeps the set
// exact.
func (s *CategoryService) seedDefaults(ctx context.Context) {
	for _, c := range defaultCategories {
		c.Slug = slug.Generate(c.Name)
		if _, err := s.categories.Create(ctx, &c); err != nil && !errors.Is(err, store.ErrConflict) {
			slog.Warn("default category seed failed", "name", c.Name, "error", err)
			return
		}
	}
	slog.Info("seeded default categories", "count", len(defaultCategories))
}

// Create validates and persists a category. Any authenticated principal
// may create categories.
func (s *CategoryService) Create(ctx context.Context, p *policy.Principal, in CategoryInput) (*models.Category, error) {
	if !policy.Can(p, policy.CreateCategory, nil) {
		return nil, apperr.New(apperr.Unauthorized, "authentication required")
	}

	name := strings.TrimSpace(in.Name)
	n := utf8.RuneCountInString(name)
	if n < minCategoryNameLen || n > maxCategoryNameLen {
		return nil, apperr.Invalid("name must be between 2 and 50 characters", "name")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return nil, apperr.Invalid("description must be at most 200 characters", "description")
	}

	color := in.ColorTag
	if color == "" {
		color = defaultColorTag
	}
	if !hexColor.MatchString(color) {
		return nil, apperr.Invalid("color must be a hex value like #3b82f6", "color")
	}

	categorySlug := slug.Generate(name)
	if categorySlug == "" {
		return nil, apperr.Invalid("name does not produce a valid slug", "name")
	}

	created, err := s.categories.Create(ctx, &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: strings.TrimSpace(in.Description),
		ColorTag:    strings.ToLower(color),
	})
	if errors.Is(err, store.ErrConflict) {
		return nil, apperr.Newf(apperr.Conflict, "a category with slug %q already exists", categorySlug)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create category failed", err)
	}
	return created, nil
}
