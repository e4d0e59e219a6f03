package domain

import (
	"fmt"
	"strings"
)

// CardStyle selects the shape of generated flashcards.
type CardStyle string

const (
	// CardStyleQA cards hold a question and an answer.
	CardStyleQA CardStyle = "qa"
	// CardStyleTermDefinition cards hold a term and its definition.
	CardStyleTermDefinition CardStyle = "term_definition"
	// CardStyleMCQ cards hold a question, its options and the answer.
	CardStyleMCQ CardStyle = "mcq"
)

// CardStyles lists every supported style.
var CardStyles = []CardStyle{CardStyleQA, CardStyleTermDefinition, CardStyleMCQ}

// ParseCardStyle accepts the canonical names as well as the display forms
// "Q&A" and "Term/Definition", case-insensitively.
func ParseCardStyle(s string) (CardStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qa", "q&a":
		return CardStyleQA, nil
	case "term_definition", "term/definition":
		return CardStyleTermDefinition, nil
	case "mcq":
		return CardStyleMCQ, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCardStyle, s)
	}
}

// IsValid checks if the style is one of the defined values.
func (s CardStyle) IsValid() bool {
	switch s {
	case CardStyleQA, CardStyleTermDefinition, CardStyleMCQ:
		return true
	}
	return false
}

// Label returns the human readable name of the style.
func (s CardStyle) Label() string {
	switch s {
	case CardStyleQA:
		return "Q&A"
	case CardStyleTermDefinition:
		return "Term/Definition"
	case CardStyleMCQ:
		return "MCQ"
	}
	return string(s)
}

// Flashcard is one parsed study card. Question holds the question or term,
// Answer holds the answer or definition, and Options is set only for MCQ.
type Flashcard struct {
	Style    CardStyle `json:"style"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Options  string    `json:"options,omitempty"`
}

// Term returns the term of a Term/Definition card.
func (f Flashcard) Term() string {
	return f.Question
}

// Definition returns the definition of a Term/Definition card.
func (f Flashcard) Definition() string {
	return f.Answer
}

// Fields returns the card's values in column order for its style.
func (f Flashcard) Fields() []string {
	if f.Style == CardStyleMCQ {
		return []string{f.Question, f.Options, f.Answer}
	}
	return []string{f.Question, f.Answer}
}

// Columns returns the column headers for cards of style s.
func (s CardStyle) Columns() []string {
	switch s {
	case CardStyleTermDefinition:
		return []string{"Term", "Definition"}
	case CardStyleMCQ:
		return []string{"Question", "Options", "Answer"}
	default:
		return []string{"Question", "Answer"}
	}
}
