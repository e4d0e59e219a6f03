package flashcard

import (
	"strings"

	"github.com/phrazzld/slidescry/internal/domain"
)

// Line prefixes of the flashcard format.
const (
	prefixQuestion   = "Q:"
	prefixAnswer     = "A:"
	prefixTerm       = "T:"
	prefixDefinition = "D:"
	prefixOptions    = "Options:"
)

// ParserFunc parses one model response into cards of a single style.
type ParserFunc func(text string) []domain.Flashcard

// ParserFor returns the parser for style. Unknown styles fall back to Q&A.
func ParserFor(style domain.CardStyle) ParserFunc {
	switch style {
	case domain.CardStyleTermDefinition:
		return parseTermDefinition
	case domain.CardStyleMCQ:
		return parseMCQ
	default:
		return parseQA
	}
}

// Parse returns the complete cards found in text, in order.
func Parse(text string, style domain.CardStyle) []domain.Flashcard {
	return ParserFor(style)(text)
}

// field reports whether line starts with prefix (ignoring case) and returns
// the trimmed remainder.
func field(line, prefix string) (string, bool) {
	if len(line) < len(prefix) || !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

func lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// parsePairs handles the two-line styles: an opening line followed by a
// closing line. A new opening line replaces an unfinished one.
func parsePairs(text string, style domain.CardStyle, opening, closing string) []domain.Flashcard {
	var (
		cards   []domain.Flashcard
		prompt  string
		hasOpen bool
	)

	for _, line := range lines(text) {
		if v, ok := field(line, opening); ok {
			prompt, hasOpen = v, v != ""
			continue
		}
		if v, ok := field(line, closing); ok && hasOpen && v != "" {
			cards = append(cards, domain.Flashcard{Style: style, Question: prompt, Answer: v})
			prompt, hasOpen = "", false
		}
	}

	return cards
}

func parseQA(text string) []domain.Flashcard {
	return parsePairs(text, domain.CardStyleQA, prefixQuestion, prefixAnswer)
}

func parseTermDefinition(text string) []domain.Flashcard {
	return parsePairs(text, domain.CardStyleTermDefinition, prefixTerm, prefixDefinition)
}

func parseMCQ(text string) []domain.Flashcard {
	var (
		cards   []domain.Flashcard
		current domain.Flashcard
		stage   int // 0 none, 1 question seen, 2 options seen
	)

	for _, line := range lines(text) {
		if v, ok := field(line, prefixQuestion); ok {
			if v == "" {
				stage = 0
				continue
			}
			current = domain.Flashcard{Style: domain.CardStyleMCQ, Question: v}
			stage = 1
			continue
		}
		if v, ok := field(line, prefixOptions); ok {
			if stage == 1 && v != "" {
				current.Options = v
				stage = 2
			}
			continue
		}
		if v, ok := field(line, prefixAnswer); ok && stage == 2 && v != "" {
			current.Answer = v
			cards = append(cards, current)
			current = domain.Flashcard{}
			stage = 0
		}
	}

	return cards
}
