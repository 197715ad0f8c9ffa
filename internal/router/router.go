// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// InkPress platform. JSON endpoints are grouped by resource; the page
// groups (/dashboard, /moderator, /admin) carry role guards that redirect
// instead of writing error bodies.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/session"
	"inkpress/internal/token"
)

// Deps carries everything the route tree needs. All fields are required
// except Limiter, which disables rate limiting when nil.
type Deps struct {
	Sessions   *session.Store
	Issuer     *token.Issuer
	Limiter    *middleware.RateLimiter
	Auth       *handlers.Auth
	Posts      *handlers.Posts
	Comments   *handlers.Comments
	Categories *handlers.Categories
	Newsletter *handlers.Newsletter
	Stats      *handlers.Stats
	Upload     *handlers.Upload
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions, d.Issuer))

	limited := func(next http.HandlerFunc) http.HandlerFunc {
		if d.Limiter == nil {
			return next
		}
		return d.Limiter.Middleware(next).ServeHTTP
	}

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// Identity.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", limited(d.Auth.Signup))
		r.Post("/login", limited(d.Auth.Signin))
		r.Post("/federated", limited(d.Auth.Federated))
		r.Post("/logout", d.Auth.Logout)
		r.Get("/me", d.Auth.Me)
		r.Put("/password", d.Auth.ChangePassword)
		r.Get("/2fa", pageHandler("Two-factor challenge"))
		r.Post("/2fa/setup", d.Auth.TwoFASetup)
		r.Post("/2fa/verify", d.Auth.TwoFAVerify)

		// Sign-in and sign-up pages bounce authenticated visitors.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RedirectAuthenticated)
			r.Get("/signin", pageHandler("Sign in"))
			r.Get("/signup", pageHandler("Create your account"))
		})
	})

	// Posts.
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", d.Posts.List)
		r.Post("/", d.Posts.Create)
		r.Get("/{slug}", d.Posts.GetBySlug)
		r.Put("/{id}", d.Posts.Update)
		r.Delete("/{id}", d.Posts.Delete)
		r.Post("/{id}/like", d.Posts.Like)
	})

	// Comments.
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", d.Comments.List)
		r.Post("/", d.Comments.Create)
		r.Delete("/{id}", d.Comments.Delete)
		r.Post("/{id}/like", d.Comments.Like)
		r.Patch("/{id}/approval", d.Comments.Moderate)
	})

	// Categories.
	r.Get("/categories", d.Categories.List)
	r.Post("/categories", d.Categories.Create)

	// Newsletter.
	r.Post("/newsletter", limited(d.Newsletter.Subscribe))
	r.Post("/newsletter/unsubscribe", limited(d.Newsletter.Unsubscribe))

	// Media upload.
	r.Post("/upload", d.Upload.Post)
	r.Delete("/upload", d.Upload.Delete)

	// Role-gated page groups. The guard redirects unauthenticated
	// visitors to the sign-in page and wrong roles to /unauthorized.
	pageGroup(r, "/dashboard", func(r chi.Router) {
		r.Get("/", pageHandler("Dashboard"))
		r.Get("/stats", d.Stats.Get)
	})
	pageGroup(r, "/moderator", func(r chi.Router) {
		r.Get("/", pageHandler("Moderation queue"))
	})
	pageGroup(r, "/admin", func(r chi.Router) {
		r.Get("/", pageHandler("Administration"))
	})

	r.Get("/unauthorized", unauthorizedHandler)

	return r
}

// pageGroup mounts a role-guarded route group at the given prefix. The
// role table lives in the policy package.
func pageGroup(r chi.Router, prefix string, fn func(chi.Router)) {
	r.Route(prefix, func(r chi.Router) {
		r.Use(middleware.RequireRoute(prefix))
		fn(r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// pageHandler serves a minimal HTML shell for a gated page. The real
// interface is rendered client-side against the JSON endpoints.
func pageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<!doctype html><title>" + title + " | InkPress</title><h1>" + title + "</h1>"))
	}
}

func unauthorizedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte("<!doctype html><title>Unauthorized | InkPress</title><h1>You do not have access to this page</h1>"))
}
