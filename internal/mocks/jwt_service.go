package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slidescry/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, sessionID uuid.UUID) (string, time.Time, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	ExpiresAt   time.Time
	Err         error
	ValidateErr error
	Claims      *auth.Claims
}

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, sessionID uuid.UUID) (string, time.Time, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, sessionID)
	}
	return m.Token, m.ExpiresAt, m.Err
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// NewMockJWTServiceForSession returns a mock whose tokens are the session ID
// itself, so tests can authenticate as any session.
func NewMockJWTServiceForSession(expiresAt time.Time) *MockJWTService {
	return &MockJWTService{
		GenerateTokenFn: func(_ context.Context, sessionID uuid.UUID) (string, time.Time, error) {
			return sessionID.String(), expiresAt, nil
		},
		ValidateTokenFn: func(_ context.Context, tokenString string) (*auth.Claims, error) {
			id, err := uuid.Parse(tokenString)
			if err != nil {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{SessionID: id, Subject: tokenString, ExpiresAt: expiresAt}, nil
		},
	}
}
