package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/slidescry/internal/api/shared"
	"github.com/phrazzld/slidescry/internal/platform/logger"
	"github.com/phrazzld/slidescry/internal/redact"
	"github.com/phrazzld/slidescry/internal/service/auth"
	"github.com/phrazzld/slidescry/internal/session"
)

// SessionLookup finds a live session by ID.
type SessionLookup interface {
	Get(id uuid.UUID) (*session.Session, error)
}

// AuthMiddleware authenticates requests with a session token.
type AuthMiddleware struct {
	jwtService auth.JWTService
	sessions   SessionLookup
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, sessions SessionLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// Authenticate validates the session token in the Authorization header and
// adds the session it names to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			if r.Header.Get("Authorization") == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			} else {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			}
			return
		}

		sess, status, msg := m.resolve(r.Context(), token)
		if sess == nil {
			shared.RespondWithError(w, r, status, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithSession(r.Context(), sess)))
	})
}

// Resolve returns the session named by a request's bearer token, if any.
// Requests without a usable token yield nil without an error response, so
// endpoints that work with or without a session can call it directly.
func (m *AuthMiddleware) Resolve(r *http.Request) *session.Session {
	token, ok := BearerToken(r)
	if !ok {
		return nil
	}
	sess, _, _ := m.resolve(r.Context(), token)
	return sess
}

func (m *AuthMiddleware) resolve(ctx context.Context, token string) (*session.Session, int, string) {
	claims, err := m.jwtService.ValidateToken(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, http.StatusUnauthorized, "Token expired"
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
			return nil, http.StatusUnauthorized, "Invalid token"
		default:
			logger.FromContext(ctx).Error("failed to validate token", "error", redact.Error(err))
			return nil, http.StatusInternalServerError, "Authentication error"
		}
	}

	sess, err := m.sessions.Get(claims.SessionID)
	if err != nil {
		logger.FromContext(ctx).Debug("token names an unknown session",
			"session_id", claims.SessionID.String())
		return nil, http.StatusNotFound, "Session not found or expired"
	}
	return sess, 0, ""
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
