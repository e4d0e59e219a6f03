package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/slidescry/internal/deck"
	"github.com/phrazzld/slidescry/internal/domain"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/service"
	"github.com/phrazzld/slidescry/internal/service/auth"
	"github.com/phrazzld/slidescry/internal/session"
	"github.com/phrazzld/slidescry/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"session not found", session.ErrSessionNotFound, http.StatusNotFound},
		{"slide not found", service.ErrSlideNotFound, http.StatusNotFound},
		{"no flashcards", service.ErrNoFlashcards, http.StatusNotFound},
		{"task not found", task.ErrTaskNotFound, http.StatusNotFound},
		{"invalid style", fmt.Errorf("%w: %q", domain.ErrInvalidCardStyle, "essay"), http.StatusBadRequest},
		{"empty question", service.ErrEmptyQuestion, http.StatusBadRequest},
		{"empty deck", deck.ErrEmptyDeck, http.StatusBadRequest},
		{"corrupt deck", fmt.Errorf("%w: bad zip", deck.ErrCorruptDeck), http.StatusBadRequest},
		{"unsupported format", deck.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"deck expands too far", fmt.Errorf("%w: ppt/slides/slide1.xml", deck.ErrDeckTooLarge), http.StatusRequestEntityTooLarge},
		{"deadline wrapping blocked", fmt.Errorf("%w: %w", generation.ErrRetryDeadlineExceeded, generation.ErrContentBlocked), http.StatusServiceUnavailable},
		{"quota", generation.ErrQuotaExhausted, http.StatusServiceUnavailable},
		{"queue full", task.ErrQueueFull, http.StatusServiceUnavailable},
		{"blocked", generation.ErrContentBlocked, http.StatusUnprocessableEntity},
		{"generation failed", &service.StudyServiceError{Operation: "analyze", Err: generation.ErrGenerationFailed}, http.StatusBadGateway},
		{"stopped", generation.ErrGenerationStopped, http.StatusBadGateway},
		{"request deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Slide not found", GetSafeErrorMessage(service.ErrSlideNotFound))
	assert.Equal(t, "Content generation failed",
		GetSafeErrorMessage(fmt.Errorf("api key AIza... rejected: %w", generation.ErrGenerationFailed)))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("postgres://user:pw@db/slidescry unreachable")))
}

func TestHandleAPIError_Fallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"mapped error keeps its message", service.ErrSlideNotFound, "Slide not found"},
		{"internal error uses fallback", errors.New("boom"), "Failed to analyse slide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "Failed to analyse slide")
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	type request struct {
		Question string `validate:"required"`
	}
	err := validator.New().Struct(request{})
	assert.Equal(t, "Invalid Question: required field", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
