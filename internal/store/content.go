package store

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/slidescry/internal/domain"
)

// ContentKind identifies what a cached generation holds.
type ContentKind string

const (
	ContentKindAnalysis   ContentKind = "analysis"
	ContentKindFlashcards ContentKind = "flashcards"
)

// IsValid checks if the kind is one of the defined values.
func (k ContentKind) IsValid() bool {
	return k == ContentKindAnalysis || k == ContentKindFlashcards
}

// ContentKey addresses one generated result for one slide of a deck.
// Style is empty for analyses.
type ContentKey struct {
	ContentHash string
	SlideNumber int
	Kind        ContentKind
	Style       domain.CardStyle
}

// Validate checks that the key can address a row.
func (k ContentKey) Validate() error {
	if k.ContentHash == "" {
		return fmt.Errorf("%w: content hash cannot be empty", ErrInvalidEntity)
	}
	if k.SlideNumber < 1 {
		return fmt.Errorf("%w: slide number must be at least 1", ErrInvalidEntity)
	}
	if !k.Kind.IsValid() {
		return fmt.Errorf("%w: unknown content kind %q", ErrInvalidEntity, k.Kind)
	}
	if k.Kind == ContentKindFlashcards && !k.Style.IsValid() {
		return fmt.Errorf("%w: flashcards need a valid card style", ErrInvalidEntity)
	}
	return nil
}

// ContentEntry is a cached generation.
type ContentEntry struct {
	Key       ContentKey
	Body      string
	CreatedAt time.Time
}

// ContentCache stores raw generated text so that the same deck uploaded
// again, in any session, does not need new generation calls.
type ContentCache interface {
	// Get returns the cached body for key or ErrContentNotFound.
	Get(ctx context.Context, key ContentKey) (string, error)

	// Put stores body under key, replacing any existing entry.
	Put(ctx context.Context, key ContentKey, body string) error

	// DeleteDeck removes every entry for a content hash and returns how many
	// entries were removed.
	DeleteDeck(ctx context.Context, contentHash string) (int64, error)
}
