package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and checks the tokens that bind a client to its study
// session.
type JWTService interface {
	// GenerateToken creates a signed token for the session and returns it
	// together with its expiry time.
	GenerateToken(ctx context.Context, sessionID uuid.UUID) (string, time.Time, error)

	// ValidateToken validates the token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated contents of a session token.
type Claims struct {
	// SessionID is the study session the token was issued for.
	SessionID uuid.UUID `json:"sid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
