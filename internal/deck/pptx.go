package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// drawingML is the namespace of text runs and paragraphs in slide parts.
const drawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// DefaultMaxExtractedBytes bounds the decompressed slide XML read from one
// .pptx when no other limit is set.
const DefaultMaxExtractedBytes = 256 << 20

// PPTXExtractor reads the slide text of .pptx files. MaxExtractedBytes caps
// the total decompressed size of all slide parts.
type PPTXExtractor struct {
	MaxExtractedBytes int64
}

// ExtractPPTX extracts data with the default size limit.
func ExtractPPTX(data []byte) ([]string, error) {
	return PPTXExtractor{}.Extract(data)
}

// Extract returns the text of each slide in slide order. Paragraphs are
// separated by newlines.
func (e PPTXExtractor) Extract(data []byte) ([]string, error) {
	remaining := e.MaxExtractedBytes
	if remaining <= 0 {
		remaining = DefaultMaxExtractedBytes
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDeck, err)
	}

	type part struct {
		number int
		file   *zip.File
	}
	var parts []part
	for _, f := range zr.File {
		m := slidePart.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, part{number: n, file: f})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].number < parts[j].number })

	pages := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.file.UncompressedSize64 > uint64(remaining) {
			return nil, fmt.Errorf("%w: %s", ErrDeckTooLarge, p.file.Name)
		}

		text, read, err := readSlidePart(p.file, remaining)
		if err != nil {
			return nil, err
		}
		remaining -= read
		pages = append(pages, text)
	}

	return pages, nil
}

// readSlidePart extracts the text of f, reading at most limit bytes. The
// declared size in the zip header is not trusted.
func readSlidePart(f *zip.File, limit int64) (string, int64, error) {
	rc, err := f.Open()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrCorruptDeck, f.Name, err)
	}
	defer rc.Close()

	lr := &io.LimitedReader{R: rc, N: limit + 1}
	text, err := slideText(lr)
	read := limit + 1 - lr.N
	if read > limit {
		return "", read, fmt.Errorf("%w: %s", ErrDeckTooLarge, f.Name)
	}
	if err != nil {
		return "", read, fmt.Errorf("%w: %s: %v", ErrCorruptDeck, f.Name, err)
	}
	return text, read, nil
}

// slideText collects the a:t runs of a slide part, one line per a:p.
func slideText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != drawingML {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "br":
				if inPara {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			if t.Name.Space != drawingML {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				inPara = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}
