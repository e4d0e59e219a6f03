package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/slidescry/internal/domain"
	"github.com/phrazzld/slidescry/internal/generation"
)

// Service errors are sentinel values that callers check with errors.Is.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in StudyServiceError with the operation name
// 3. Generation errors stay reachable through Unwrap so the API layer can map them
var (
	// ErrSlideNotFound indicates a slide number outside the session's deck.
	// API layer should map this to HTTP 404 Not Found.
	ErrSlideNotFound = errors.New("slide not found")

	// ErrEmptyQuestion indicates a chat question with no text.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrNoFlashcards indicates an export for a slide that has no flashcards yet.
	ErrNoFlashcards = errors.New("no flashcards generated for slide")
)

// StudyServiceError wraps unexpected failures in StudyService operations.
type StudyServiceError struct {
	// Operation is the operation that failed (e.g., "analyze", "chat")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for StudyServiceError.
func (e *StudyServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("study service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("study service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StudyServiceError) Unwrap() error {
	return e.Err
}

// NewStudyServiceError creates a new StudyServiceError.
// It returns known sentinel errors directly without wrapping.
func NewStudyServiceError(operation, message string, err error) error {
	if errors.Is(err, ErrSlideNotFound) ||
		errors.Is(err, ErrEmptyQuestion) ||
		errors.Is(err, ErrNoFlashcards) ||
		errors.Is(err, domain.ErrInvalidCardStyle) {
		return err
	}
	return &StudyServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// failureMessage is the text stored on a slide after a failed generation.
// It is shown to users, so it never contains the raw upstream error.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, generation.ErrRetryDeadlineExceeded):
		return "The generation service stayed unavailable; try again later."
	case errors.Is(err, generation.ErrQuotaExhausted):
		return "The generation quota is exhausted; try again later."
	case errors.Is(err, generation.ErrContentBlocked):
		return "The generation service blocked this content."
	case errors.Is(err, generation.ErrGenerationStopped):
		return "The generation stopped before completing."
	case errors.Is(err, generation.ErrInvalidResponse):
		return "The generation service returned an empty response."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled."
	default:
		return "Content generation failed."
	}
}
