package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/session"
	"inkpress/internal/token"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(role models.Role, twoFAPending bool) *session.Data {
	return &session.Data{
		UserID:       uuid.New(),
		Email:        "test@inkpress.local",
		Name:         "Test User",
		Role:         role,
		TwoFAPending: twoFAPending,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses. This allows tests to simulate
// the state after LoadSession has run without needing a real Valkey store.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession(models.RoleAdmin, false)
		got := SessionFromCtx(ctxWithSession(context.Background(), sess))
		if got == nil {
			t.Fatal("expected non-nil session, got nil")
		}
		if got.Email != sess.Email {
			t.Errorf("Email: got %q, want %q", got.Email, sess.Email)
		}
		if got.Role != sess.Role {
			t.Errorf("Role: got %q, want %q", got.Role, sess.Role)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

func TestPrincipalFromCtx(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		if p := PrincipalFromCtx(context.Background()); p != nil {
			t.Errorf("expected nil principal, got %+v", p)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		sess := newTestSession(models.RoleModerator, false)
		p := PrincipalFromCtx(ctxWithSession(context.Background(), sess))
		if p == nil {
			t.Fatal("expected principal")
		}
		if p.ID != sess.UserID || p.Role != models.RoleModerator {
			t.Errorf("principal = %+v", p)
		}
	})

	t.Run("2fa pending carries no authority", func(t *testing.T) {
		sess := newTestSession(models.RoleAdmin, true)
		if p := PrincipalFromCtx(ctxWithSession(context.Background(), sess)); p != nil {
			t.Errorf("expected nil principal for pending 2FA, got %+v", p)
		}
	})
}

func TestBearerSession(t *testing.T) {
	issuer := token.NewIssuer("test-secret")
	userID := uuid.New()
	signed, err := issuer.Issue(userID, models.RoleUser)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer "+signed)

		sess := bearerSession(req, issuer)
		if sess == nil {
			t.Fatal("expected session from bearer token")
		}
		if sess.UserID != userID || sess.Role != models.RoleUser {
			t.Errorf("session = %+v", sess)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		if sess := bearerSession(req, issuer); sess != nil {
			t.Errorf("expected nil, got %+v", sess)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Token abc")
		if sess := bearerSession(req, issuer); sess != nil {
			t.Errorf("expected nil, got %+v", sess)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer "+signed+"x")
		if sess := bearerSession(req, issuer); sess != nil {
			t.Errorf("expected nil, got %+v", sess)
		}
	})
}

func TestRequireRoute(t *testing.T) {
	tests := []struct {
		name         string
		sess         *session.Data
		prefix       string
		wantCalled   bool
		wantLocation string
	}{
		{"anonymous redirected to signin", nil, "/dashboard", false, "/auth/signin"},
		{"pending 2fa redirected to challenge", newTestSession(models.RoleAdmin, true), "/admin", false, "/auth/2fa"},
		{"wrong role redirected to unauthorized", newTestSession(models.RoleUser, false), "/admin", false, "/unauthorized"},
		{"moderator blocked from admin group", newTestSession(models.RoleModerator, false), "/admin", false, "/unauthorized"},
		{"admin allowed into moderator group", newTestSession(models.RoleAdmin, false), "/moderator", true, ""},
		{"user allowed into dashboard", newTestSession(models.RoleUser, false), "/dashboard", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := RequireRoute(tt.prefix)(inner)

			req := httptest.NewRequest(http.MethodGet, tt.prefix, nil)
			if tt.sess != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", *called, tt.wantCalled)
			}
			if tt.wantLocation != "" {
				if rr.Code != http.StatusSeeOther {
					t.Errorf("status = %d, want %d", rr.Code, http.StatusSeeOther)
				}
				if loc := rr.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("location = %q, want %q", loc, tt.wantLocation)
				}
			}
		})
	}
}

func TestRequireRouteUnknownPrefixPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an ungated prefix")
		}
	}()
	RequireRoute("/profile")
}

func TestRedirectAuthenticated(t *testing.T) {
	t.Run("anonymous passes through", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/auth/signin", nil)
		rr := httptest.NewRecorder()
		RedirectAuthenticated(inner).ServeHTTP(rr, req)
		if !*called {
			t.Error("next handler should run for anonymous callers")
		}
	})

	t.Run("authenticated redirected to dashboard", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/auth/signin", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(models.RoleUser, false)))
		rr := httptest.NewRecorder()
		RedirectAuthenticated(inner).ServeHTTP(rr, req)
		if *called {
			t.Error("next handler should not run for authenticated callers")
		}
		if loc := rr.Header().Get("Location"); loc != "/dashboard" {
			t.Errorf("location = %q, want /dashboard", loc)
		}
	})

	t.Run("pending 2fa may reach the challenge pages", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/auth/2fa", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(models.RoleUser, true)))
		rr := httptest.NewRecorder()
		RedirectAuthenticated(inner).ServeHTTP(rr, req)
		if !*called {
			t.Error("next handler should run while 2FA is pending")
		}
	})
}
