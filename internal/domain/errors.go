package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCardStyle is returned when a card style name is not recognised.
	ErrInvalidCardStyle = errors.New("invalid card style")

	// ErrInvalidSlideNumber is returned when a slide number is below 1.
	ErrInvalidSlideNumber = errors.New("slide number must be at least 1")

	// ErrInvalidChatRole is returned when a chat message has an unknown role.
	ErrInvalidChatRole = errors.New("invalid chat role")
)
