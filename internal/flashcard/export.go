package flashcard

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/phrazzld/slidescry/internal/domain"
)

// WriteCSV writes a header row for style followed by one row per card.
func WriteCSV(w io.Writer, style domain.CardStyle, cards []domain.Flashcard) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(style.Columns()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, card := range cards {
		if card.Style == "" {
			card.Style = style
		}
		if err := cw.Write(card.Fields()); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ExportFilename returns the download name for a slide's cards.
func ExportFilename(slideNumber int, style domain.CardStyle) string {
	return fmt.Sprintf("slide_%d_%s_flashcards.csv", slideNumber, style)
}
