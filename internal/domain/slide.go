package domain

import (
	"fmt"
	"strings"
)

// Slide is one page of an uploaded deck together with the content generated
// for it. Analysis and Flashcards stay empty until a generation succeeds;
// LastError records the most recent failure so a later view can retry.
type Slide struct {
	Number         int         `json:"number"`
	Content        string      `json:"content"`
	Analysis       string      `json:"analysis,omitempty"`
	Flashcards     []Flashcard `json:"flashcards,omitempty"`
	FlashcardStyle CardStyle   `json:"flashcard_style,omitempty"`
	LastError      string      `json:"last_error,omitempty"`
}

// NewSlide creates a slide with the given number and extracted text.
func NewSlide(number int, content string) (*Slide, error) {
	if number < 1 {
		return nil, fmt.Errorf("%w: %w (got %d)", ErrValidation, ErrInvalidSlideNumber, number)
	}
	return &Slide{
		Number:  number,
		Content: strings.TrimSpace(content),
	}, nil
}

// IsBlank reports whether the slide has no text.
func (s *Slide) IsBlank() bool {
	return strings.TrimSpace(s.Content) == ""
}

// HasAnalysis reports whether an analysis has been generated.
func (s *Slide) HasAnalysis() bool {
	return s.Analysis != ""
}

// SetAnalysis stores a generated analysis and clears any previous error.
func (s *Slide) SetAnalysis(text string) {
	s.Analysis = text
	s.LastError = ""
}

// CachedFlashcards returns the flashcards generated for style, if any.
func (s *Slide) CachedFlashcards(style CardStyle) ([]Flashcard, bool) {
	if s.FlashcardStyle != style || len(s.Flashcards) == 0 {
		return nil, false
	}
	return s.Flashcards, true
}

// SetFlashcards replaces the slide's flashcards with cards of style.
func (s *Slide) SetFlashcards(style CardStyle, cards []Flashcard) {
	s.Flashcards = cards
	s.FlashcardStyle = style
	s.LastError = ""
}

// RecordError stores a failure message for display.
func (s *Slide) RecordError(msg string) {
	s.LastError = msg
}
