// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package token issues and verifies the HMAC-signed JWTs used for API
// access and for federated sign-in assertions from the identity provider.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inkpress/internal/models"
)

// DefaultTTL is how long issued API tokens remain valid.
const DefaultTTL = 24 * time.Hour

// Claims is the payload carried by API tokens.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IdentityClaims is the payload of a federated sign-in assertion minted
// by the external identity provider with the shared secret.
type IdentityClaims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with an HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer for the given signing secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: DefaultTTL}
}

// Issue mints a signed API token for the given user.
func (i *Issuer) Issue(userID uuid.UUID, role models.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse verifies an API token and returns the user ID and role it carries.
func (i *Issuer) Parse(tokenString string) (uuid.UUID, models.Role, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	if !token.Valid {
		return uuid.Nil, "", errors.New("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid subject: %w", err)
	}
	if !claims.Role.Valid() {
		return uuid.Nil, "", errors.New("invalid role claim")
	}
	return userID, claims.Role, nil
}

// ParseIdentity verifies a federated sign-in assertion signed with the
// identity provider's shared secret and returns its claims.
func ParseIdentity(tokenString, secret string) (*IdentityClaims, error) {
	claims := IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("assertion missing email claim")
	}
	return &claims, nil
}
