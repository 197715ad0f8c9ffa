// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the route tree, the role guards, and the
// health endpoint without a database or Valkey behind them.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/service"
	"inkpress/internal/store"
	"inkpress/internal/token"
)

// stubPosts satisfies the post store interface with empty results.
type stubPosts struct{}

func (stubPosts) List(context.Context, store.PostFilter) ([]models.Post, int, error) {
	return nil, 0, nil
}
func (stubPosts) FindByID(context.Context, uuid.UUID) (*models.Post, error)   { return nil, nil }
func (stubPosts) FindBySlug(context.Context, string) (*models.Post, error)    { return nil, nil }
func (stubPosts) SlugExists(context.Context, string, uuid.UUID) (bool, error) { return false, nil }
func (stubPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	cp := *p
	cp.ID = uuid.New()
	return &cp, nil
}
func (stubPosts) Update(context.Context, *models.Post) error      { return nil }
func (stubPosts) Delete(context.Context, uuid.UUID) error         { return nil }
func (stubPosts) IncrementViews(context.Context, uuid.UUID) error { return nil }
func (stubPosts) IncrementLikes(context.Context, uuid.UUID) error { return nil }

// stubCategories keeps created categories in memory so the lazy default
// seeding path works.
type stubCategories struct {
	items []models.Category
}

func (s *stubCategories) List(context.Context) ([]models.Category, error) { return s.items, nil }
func (s *stubCategories) Count(context.Context) (int, error)              { return len(s.items), nil }
func (s *stubCategories) FindByID(context.Context, uuid.UUID) (*models.Category, error) {
	return nil, nil
}
func (s *stubCategories) FindBySlug(context.Context, string) (*models.Category, error) {
	return nil, nil
}
func (s *stubCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	cp := *c
	cp.ID = uuid.New()
	s.items = append(s.items, cp)
	return &cp, nil
}

type stubComments struct{}

func (stubComments) List(context.Context, store.CommentFilter) ([]models.Comment, int, error) {
	return nil, 0, nil
}
func (stubComments) FindByID(context.Context, uuid.UUID) (*models.Comment, error) { return nil, nil }
func (stubComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	cp := *c
	cp.ID = uuid.New()
	return &cp, nil
}
func (stubComments) Delete(context.Context, uuid.UUID) error            { return nil }
func (stubComments) SetApproved(context.Context, uuid.UUID, bool) error { return nil }
func (stubComments) IncrementLikes(context.Context, uuid.UUID) error    { return nil }

type stubNewsletter struct{}

func (stubNewsletter) FindByEmail(context.Context, string) (*models.NewsletterSubscription, error) {
	return nil, nil
}
func (stubNewsletter) Create(_ context.Context, email string) (*models.NewsletterSubscription, error) {
	return &models.NewsletterSubscription{ID: uuid.New(), Email: email, Active: true, SubscribedAt: time.Now()}, nil
}
func (stubNewsletter) Reactivate(context.Context, uuid.UUID) (*models.NewsletterSubscription, error) {
	return nil, nil
}
func (stubNewsletter) Deactivate(context.Context, uuid.UUID) error { return nil }

type stubUsers struct{}

func (stubUsers) List(context.Context, int, int) ([]models.User, error) { return nil, nil }

// newTestRouter builds the full route tree over stub stores. No Valkey,
// no Postgres; identity rides on bearer tokens only.
func newTestRouter(t *testing.T) (chi.Router, *token.Issuer) {
	t.Helper()
	issuer := token.NewIssuer("router-test-secret")

	d := Deps{
		Sessions:   nil, // no cookie sessions in these tests
		Issuer:     issuer,
		Limiter:    middleware.NewRateLimiter(3, time.Minute),
		Auth:       handlers.NewAuth(nil, nil, issuer, ""),
		Posts:      handlers.NewPosts(service.NewPostService(stubPosts{}, &stubCategories{})),
		Comments:   handlers.NewComments(service.NewCommentService(stubComments{}, stubPosts{})),
		Categories: handlers.NewCategories(service.NewCategoryService(&stubCategories{})),
		Newsletter: handlers.NewNewsletter(service.NewNewsletterService(stubNewsletter{})),
		Stats:      handlers.NewStats(service.NewStatsService(stubPosts{}, stubUsers{})),
		Upload:     handlers.NewUpload(nil),
	}
	t.Cleanup(d.Limiter.Stop)
	return New(d), issuer
}

func bearer(t *testing.T, issuer *token.Issuer, role models.Role) string {
	t.Helper()
	tok, err := issuer.Issue(uuid.New(), role)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestPageGuards(t *testing.T) {
	router, issuer := newTestRouter(t)

	tests := []struct {
		name     string
		path     string
		role     models.Role
		anon     bool
		wantCode int
		wantLoc  string
	}{
		{"anonymous dashboard", "/dashboard", "", true, http.StatusSeeOther, "/auth/signin"},
		{"anonymous admin", "/admin", "", true, http.StatusSeeOther, "/auth/signin"},
		{"user dashboard", "/dashboard", models.RoleUser, false, http.StatusOK, ""},
		{"user admin", "/admin", models.RoleUser, false, http.StatusSeeOther, "/unauthorized"},
		{"user moderator", "/moderator", models.RoleUser, false, http.StatusSeeOther, "/unauthorized"},
		{"moderator moderator", "/moderator", models.RoleModerator, false, http.StatusOK, ""},
		{"moderator admin", "/admin", models.RoleModerator, false, http.StatusSeeOther, "/unauthorized"},
		{"admin everywhere", "/admin", models.RoleAdmin, false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if !tt.anon {
				req.Header.Set("Authorization", bearer(t, issuer, tt.role))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantLoc != "" {
				if loc := w.Header().Get("Location"); loc != tt.wantLoc {
					t.Errorf("location: got %q, want %q", loc, tt.wantLoc)
				}
			}
		})
	}
}

func TestSigninPageRedirectsAuthenticated(t *testing.T) {
	router, issuer := newTestRouter(t)

	req := httptest.NewRequest("GET", "/auth/signin", nil)
	req.Header.Set("Authorization", bearer(t, issuer, models.RoleUser))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("location: got %q, want /dashboard", loc)
	}

	// Anonymous visitors get the page itself.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/auth/signin", nil))
	if w.Code != http.StatusOK {
		t.Errorf("anonymous status: got %d, want 200", w.Code)
	}
}

func TestDashboardStatsGated(t *testing.T) {
	router, issuer := newTestRouter(t)

	// Anonymous callers are redirected by the page guard.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard/stats", nil))
	if w.Code != http.StatusSeeOther {
		t.Errorf("anonymous status: got %d, want 303", w.Code)
	}

	// Any dashboard role can read stats.
	req := httptest.NewRequest("GET", "/dashboard/stats", nil)
	req.Header.Set("Authorization", bearer(t, issuer, models.RoleUser))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("user status: got %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
}

func TestCategoriesPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/categories", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var body struct {
		Categories []models.Category `json:"categories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// Defaults are seeded on first read of an empty collection.
	if len(body.Categories) == 0 {
		t.Error("expected seeded default categories")
	}
}

func TestNewsletterRateLimited(t *testing.T) {
	router, _ := newTestRouter(t)

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/newsletter", nil)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("status after burst: got %d, want 429", last)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/no/such/route", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}
