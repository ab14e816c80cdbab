// Package auth provides the token-verification collaborator used to resolve
// caller identity, plus password hashing for the user store. This service
// only verifies bearer tokens issued by the identity provider; it never
// signs or issues them.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenClaims is the verified identity extracted from a bearer token.
type TokenClaims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid"`

	// Email is the address the identity provider verified for this user.
	Email string `json:"email"`

	// EmailVerified reports whether the provider confirmed the address.
	EmailVerified bool `json:"email_verified"`

	// ExpiresAt is when the token stops being valid.
	ExpiresAt time.Time `json:"exp"`
}

// TokenVerifier exchanges a bearer token for verified identity claims.
type TokenVerifier interface {
	// VerifyToken validates the token and returns its claims.
	// Returns ErrInvalidToken or ErrExpiredToken for bad credentials, and
	// ErrVerifierUnavailable when the provider cannot be consulted.
	VerifyToken(ctx context.Context, token string) (*TokenClaims, error)
}
