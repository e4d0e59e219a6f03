package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/slidescry/internal/api/shared"
	"github.com/phrazzld/slidescry/internal/deck"
	"github.com/phrazzld/slidescry/internal/domain"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/service"
	"github.com/phrazzld/slidescry/internal/service/auth"
	"github.com/phrazzld/slidescry/internal/session"
	"github.com/phrazzld/slidescry/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, service.ErrSlideNotFound),
		errors.Is(err, service.ErrNoFlashcards),
		errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidCardStyle),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrEmptyQuestion),
		errors.Is(err, deck.ErrEmptyDeck),
		errors.Is(err, deck.ErrCorruptDeck):
		return http.StatusBadRequest

	case errors.Is(err, deck.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType

	case errors.As(err, &maxBytesErr),
		errors.Is(err, deck.ErrDeckTooLarge):
		return http.StatusRequestEntityTooLarge

	// Generation errors. The retry deadline wraps the last upstream error,
	// so it is checked before the individual causes.
	case errors.Is(err, generation.ErrRetryDeadlineExceeded),
		errors.Is(err, generation.ErrQuotaExhausted),
		errors.Is(err, task.ErrQueueFull):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationStopped):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found or expired"
	case errors.Is(err, service.ErrSlideNotFound):
		return "Slide not found"
	case errors.Is(err, service.ErrNoFlashcards):
		return "No flashcards have been generated for this slide"
	case errors.Is(err, task.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, domain.ErrInvalidCardStyle):
		return "Invalid flashcard style"
	case errors.Is(err, service.ErrEmptyQuestion):
		return "Question cannot be empty"
	case errors.Is(err, deck.ErrEmptyDeck):
		return "The deck contains no slides"
	case errors.Is(err, deck.ErrCorruptDeck):
		return "The deck file could not be read"
	case errors.Is(err, deck.ErrUnsupportedFormat):
		return "Unsupported file type; upload a .pptx or .pdf deck"
	case errors.As(err, &maxBytesErr), errors.Is(err, deck.ErrDeckTooLarge):
		return "The uploaded file is too large"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	case errors.Is(err, generation.ErrRetryDeadlineExceeded):
		return "The generation service is temporarily unavailable; try again later"
	case errors.Is(err, generation.ErrQuotaExhausted):
		return "The generation quota is exhausted; try again later"
	case errors.Is(err, task.ErrQueueFull):
		return "Too many analyses are queued; try again later"
	case errors.Is(err, generation.ErrContentBlocked):
		return "The generation service blocked this content"
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationStopped):
		return "Content generation failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message, logs the
// redacted details and writes the error response.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMsg != "" {
		msg = fallbackMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'FlashcardsRequest.Style' Error:Field validation for 'Style' failed on the 'oneof' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
