// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"inkpress/internal/policy"
	"inkpress/internal/session"
	"inkpress/internal/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// LoadSession resolves the caller's identity and stores it in the request
// context. It accepts either the session cookie backed by Valkey or a
// Bearer token in the Authorization header. This middleware does NOT
// enforce authentication — it just loads the identity if one exists.
func LoadSession(store *session.Store, issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				// Treat a broken session lookup as unauthenticated.
				next.ServeHTTP(w, r)
				return
			}

			if data == nil {
				data = bearerSession(r, issuer)
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), SessionKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerSession builds session data from a valid Bearer token, or nil.
func bearerSession(r *http.Request, issuer *token.Issuer) *session.Data {
	if issuer == nil {
		return nil
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}
	userID, role, err := issuer.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}
	return &session.Data{UserID: userID, Role: role}
}

// RequireRoute guards the page group at the given path prefix. The role
// table lives in the policy package; this middleware only translates its
// answer into redirects. Anonymous callers are sent to the sign-in page,
// sessions awaiting a 2FA code to the challenge page, and authenticated
// callers outside the allowed roles to the unauthorized page. Must be
// applied after LoadSession. Panics on a prefix the policy does not gate.
func RequireRoute(prefix string) func(http.Handler) http.Handler {
	if _, ok := policy.RouteRoles(prefix); !ok {
		panic("middleware: no role table for " + prefix)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromCtx(r.Context())
			if sess == nil {
				http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
				return
			}
			if sess.TwoFAPending {
				http.Redirect(w, r, "/auth/2fa", http.StatusSeeOther)
				return
			}
			p := &policy.Principal{ID: sess.UserID, Role: sess.Role}
			if !policy.AllowedOnRoute(p, prefix) {
				http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectAuthenticated sends signed-in users away from the sign-in and
// sign-up pages to their dashboard. Must be applied after LoadSession.
func RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := SessionFromCtx(r.Context()); sess != nil && !sess.TwoFAPending {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (caller is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// PrincipalFromCtx converts the loaded session into a policy principal.
// A session still awaiting its 2FA code carries no authority yet.
func PrincipalFromCtx(ctx context.Context) *policy.Principal {
	sess := SessionFromCtx(ctx)
	if sess == nil || sess.TwoFAPending {
		return nil
	}
	return &policy.Principal{ID: sess.UserID, Role: sess.Role}
}
