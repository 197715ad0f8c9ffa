// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/policy"
	"inkpress/internal/session"
	"inkpress/internal/store"
	"inkpress/internal/token"
)

const minPasswordLen = 8

// UserDirectory is the account persistence surface the auth handlers
// depend on. *store.UserStore implements it.
type UserDirectory interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
}

// SessionManager is the cookie-session surface the auth handlers depend
// on. *session.Store implements it.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions       SessionManager
	users          UserDirectory
	issuer         *token.Issuer
	identitySecret string
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions SessionManager, users UserDirectory, issuer *token.Issuer, identitySecret string) *Auth {
	return &Auth{
		sessions:       sessions,
		users:          users,
		issuer:         issuer,
		identitySecret: identitySecret,
	}
}

// AuthResponse is returned by signup, signin, and federated sign-in.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token,omitempty"`
}

// Signup registers a local account and signs the caller in. The role
// defaults to user; only an admin caller may assign another role.
func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	var fields []string
	if utf8.RuneCountInString(req.Name) < 2 {
		fields = append(fields, "name")
	}
	if !strings.Contains(req.Email, "@") {
		fields = append(fields, "email")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		fields = append(fields, "password")
	}
	if req.Role != "" && !req.Role.Valid() {
		fields = append(fields, "role")
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "name, a valid email, and a password of at least 8 characters are required",
			Fields: fields,
		})
		return
	}

	role := models.RoleUser
	if req.Role != "" && req.Role != models.RoleUser {
		if !policy.Can(middleware.PrincipalFromCtx(r.Context()), policy.AssignRole, nil) {
			writeError(w, http.StatusForbidden, "only an administrator may assign a role")
			return
		}
		role = req.Role
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	hashStr := string(hash)
	user, err := a.users.Create(r.Context(), &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &hashStr,
		Role:         role,
	})
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	if err != nil {
		slog.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.establish(w, r, user, http.StatusCreated)
}

// Signin authenticates a local account. Accounts with 2FA enabled get a
// pending session and must verify a code before gaining any authority.
func (a *Auth) Signin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := a.users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		slog.Error("signin lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || user.IsFederated() ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if user.TOTPEnabled {
		_, err := a.sessions.Create(r.Context(), w, &session.Data{
			UserID:       user.ID,
			Email:        user.Email,
			Name:         user.Name,
			Role:         user.Role,
			TwoFAPending: true,
		})
		if err != nil {
			slog.Error("session create failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"twoFactorRequired": true})
		return
	}

	a.establish(w, r, user, http.StatusOK)
}

// Federated signs a caller in with an assertion minted by the external
// identity provider. First-time emails get an account without a password.
func (a *Auth) Federated(w http.ResponseWriter, r *http.Request) {
	if a.identitySecret == "" {
		writeError(w, http.StatusServiceUnavailable, "federated sign-in is not configured")
		return
	}

	var req struct {
		Assertion string `json:"assertion"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	claims, err := token.ParseIdentity(req.Assertion, a.identitySecret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid identity assertion")
		return
	}

	user, err := a.users.FindByEmail(r.Context(), claims.Email)
	if err != nil {
		slog.Error("federated lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		name := strings.TrimSpace(claims.Name)
		if name == "" {
			name = claims.Email
		}
		newUser := &models.User{Name: name, Email: claims.Email, Role: models.RoleUser}
		if claims.AvatarURL != "" {
			newUser.AvatarURL = &claims.AvatarURL
		}
		user, err = a.users.Create(r.Context(), newUser)
		if errors.Is(err, store.ErrConflict) {
			// A concurrent assertion for the same email created the account.
			user, err = a.users.FindByEmail(r.Context(), claims.Email)
		}
		if err != nil || user == nil {
			slog.Error("federated account create failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	a.establish(w, r, user, http.StatusOK)
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.TwoFAPending {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("profile lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword replaces the local password after verifying the current
// one. Federated accounts have no password to change.
func (a *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.TwoFAPending {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if utf8.RuneCountInString(req.NewPassword) < minPasswordLen {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "new password must be at least 8 characters",
			Fields: []string{"newPassword"},
		})
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user.IsFederated() {
		writeError(w, http.StatusBadRequest, "federated accounts have no local password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := a.users.UpdatePassword(r.Context(), user.ID, string(hash)); err != nil {
		slog.Error("password update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TwoFASetup generates a TOTP secret for the account and returns the
// otpauth URL with a QR code for authenticator apps. The secret becomes
// active once the first code is verified.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.TwoFAPending {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "InkPress",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.users.SetTOTPSecret(r.Context(), sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
		"qrPng":  base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify checks a TOTP code. A pending session becomes fully
// authenticated; a fresh setup becomes enabled on first verification.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "two-factor authentication is not set up")
		return
	}
	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		user.TOTPEnabled = true
	}

	if sess.TwoFAPending {
		sess.TwoFAPending = false
		if err := a.sessions.Update(r.Context(), r, sess); err != nil {
			slog.Error("session update failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	apiToken, err := a.issuer.Issue(user.ID, user.Role)
	if err != nil {
		slog.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: user, Token: apiToken})
}

// establish creates a full session and API token for the user.
func (a *Auth) establish(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	apiToken, err := a.issuer.Issue(user.ID, user.Role)
	if err != nil {
		slog.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, status, AuthResponse{User: user, Token: apiToken})
}
