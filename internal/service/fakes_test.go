// fakes_test.go provides in-memory store fakes for service tests, so the
// lifecycle rules can be exercised without PostgreSQL.
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/store"
)

// --- posts ---

type fakePostStore struct {
	posts map[uuid.UUID]*models.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uuid.UUID]*models.Post)}
}

func (f *fakePostStore) List(_ context.Context, filter store.PostFilter) ([]models.Post, int, error) {
	var matched []models.Post
	for _, p := range f.posts {
		if filter.Published != nil && p.Published != *filter.Published {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Slug != "" && p.Slug != filter.Slug {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakePostStore) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePostStore) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	for _, p := range f.posts {
		if p.Slug == slug && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if taken, _ := f.SlugExists(ctx, p.Slug, uuid.Nil); taken {
		return nil, store.ErrConflict
	}
	cp := *p
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.posts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakePostStore) Update(ctx context.Context, p *models.Post) error {
	if taken, _ := f.SlugExists(ctx, p.Slug, p.ID); taken {
		return store.ErrConflict
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	f.posts[cp.ID] = &cp
	return nil
}

func (f *fakePostStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostStore) IncrementViews(_ context.Context, id uuid.UUID) error {
	if p, ok := f.posts[id]; ok {
		p.Views++
	}
	return nil
}

func (f *fakePostStore) IncrementLikes(_ context.Context, id uuid.UUID) error {
	if p, ok := f.posts[id]; ok {
		p.Likes++
	}
	return nil
}

// --- comments ---

type fakeCommentStore struct {
	comments map[uuid.UUID]*models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[uuid.UUID]*models.Comment)}
}

func (f *fakeCommentStore) List(_ context.Context, filter store.CommentFilter) ([]models.Comment, int, error) {
	var matched []models.Comment
	for _, c := range f.comments {
		if filter.PostID != nil && c.PostID != *filter.PostID {
			continue
		}
		if filter.ApprovedOnly && !c.Approved {
			continue
		}
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if filter.PostID != nil {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeCommentStore) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommentStore) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	cp := *c
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	f.comments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeCommentStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentStore) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	if c, ok := f.comments[id]; ok {
		c.Approved = approved
	}
	return nil
}

func (f *fakeCommentStore) IncrementLikes(_ context.Context, id uuid.UUID) error {
	if c, ok := f.comments[id]; ok {
		c.Likes++
	}
	return nil
}

// --- categories ---

type fakeCategoryStore struct {
	categories map[uuid.UUID]*models.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: make(map[uuid.UUID]*models.Category)}
}

func (f *fakeCategoryStore) List(_ context.Context) ([]models.Category, error) {
	var items []models.Category
	for _, c := range f.categories {
		items = append(items, *c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (f *fakeCategoryStore) Count(_ context.Context) (int, error) {
	return len(f.categories), nil
}

func (f *fakeCategoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryStore) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryStore) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	for _, existing := range f.categories {
		if existing.Slug == c.Slug {
			return nil, store.ErrConflict
		}
	}
	cp := *c
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.categories[cp.ID] = &cp
	out := cp
	return &out, nil
}

// --- newsletter ---

type fakeNewsletterStore struct {
	subs map[uuid.UUID]*models.NewsletterSubscription
}

func newFakeNewsletterStore() *fakeNewsletterStore {
	return &fakeNewsletterStore{subs: make(map[uuid.UUID]*models.NewsletterSubscription)}
}

func (f *fakeNewsletterStore) FindByEmail(_ context.Context, email string) (*models.NewsletterSubscription, error) {
	for _, s := range f.subs {
		if strings.EqualFold(s.Email, email) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeNewsletterStore) Create(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	if existing, _ := f.FindByEmail(ctx, email); existing != nil {
		return nil, store.ErrConflict
	}
	sub := &models.NewsletterSubscription{
		ID:           uuid.New(),
		Email:        email,
		Active:       true,
		SubscribedAt: time.Now(),
	}
	f.subs[sub.ID] = sub
	cp := *sub
	return &cp, nil
}

func (f *fakeNewsletterStore) Reactivate(_ context.Context, id uuid.UUID) (*models.NewsletterSubscription, error) {
	sub := f.subs[id]
	sub.Active = true
	sub.SubscribedAt = time.Now()
	sub.UnsubscribedAt = nil
	cp := *sub
	return &cp, nil
}

func (f *fakeNewsletterStore) Deactivate(_ context.Context, id uuid.UUID) error {
	sub := f.subs[id]
	now := time.Now()
	sub.Active = false
	sub.UnsubscribedAt = &now
	return nil
}

// --- users ---

type fakeUserStore struct {
	users []models.User
}

func (f *fakeUserStore) List(_ context.Context, limit, offset int) ([]models.User, error) {
	if offset > len(f.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[offset:end], nil
}
