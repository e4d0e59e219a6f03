package deck

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phrazzld/slidescry/internal/domain"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .pptx nor .pdf.
	ErrUnsupportedFormat = errors.New("unsupported deck format")

	// ErrEmptyDeck is returned when a deck has no slides.
	ErrEmptyDeck = errors.New("deck contains no slides")

	// ErrCorruptDeck is returned when a deck cannot be read.
	ErrCorruptDeck = errors.New("deck file could not be read")

	// ErrDeckTooLarge is returned when a deck expands past the extraction limit.
	ErrDeckTooLarge = errors.New("deck content exceeds the size limit")
)

// Extractor returns the text of every page of a document, in order.
type Extractor interface {
	Extract(data []byte) ([]string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(data []byte) ([]string, error)

// Extract calls f(data).
func (f ExtractorFunc) Extract(data []byte) ([]string, error) {
	return f(data)
}

// Deck is an uploaded presentation split into slides.
type Deck struct {
	Filename    string
	ContentHash string
	Slides      []*domain.Slide
}

// Loader selects an Extractor by file extension.
type Loader struct {
	extractors map[string]Extractor
}

// NewLoader returns a Loader that understands .pptx and .pdf files.
// maxExtractedBytes bounds the decompressed slide XML of a .pptx; a
// non-positive value uses DefaultMaxExtractedBytes.
func NewLoader(maxExtractedBytes int64) *Loader {
	return &Loader{
		extractors: map[string]Extractor{
			".pptx": PPTXExtractor{MaxExtractedBytes: maxExtractedBytes},
			".pdf":  ExtractorFunc(ExtractPDF),
		},
	}
}

// Register adds or replaces the extractor for ext (including the dot).
func (l *Loader) Register(ext string, e Extractor) {
	l.extractors[strings.ToLower(ext)] = e
}

// Supported reports whether filename has a known extension.
func (l *Loader) Supported(filename string) bool {
	_, ok := l.extractors[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Load extracts the slides of data, choosing the format from filename.
func (l *Loader) Load(filename string, data []byte) (*Deck, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extractor, ok := l.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	pages, err := extractor.Extract(data)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrEmptyDeck
	}

	slides := make([]*domain.Slide, 0, len(pages))
	for i, text := range pages {
		slide, err := domain.NewSlide(i+1, text)
		if err != nil {
			return nil, err
		}
		slides = append(slides, slide)
	}

	return &Deck{
		Filename:    filepath.Base(filename),
		ContentHash: Hash(data),
		Slides:      slides,
	}, nil
}

// Hash returns the hex encoded BLAKE2b-256 digest of data.
func Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
