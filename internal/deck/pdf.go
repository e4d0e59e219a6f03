package deck

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ExtractPDF returns the text of each page of a PDF document.
func ExtractPDF(data []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDeck, err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrCorruptDeck, pageNum+1, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return pages, nil
}
