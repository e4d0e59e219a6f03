package deck_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/phrazzld/slidescry/internal/deck"
)

var _ = Describe("Deck loading", func() {
	var loader *deck.Loader

	BeforeEach(func() {
		loader = deck.NewLoader(0)
	})

	Context("PowerPoint files", func() {
		It("extracts slides in numeric order with paragraphs on separate lines", func() {
			slides := make([][]string, 11)
			for i := range slides {
				slides[i] = []string{"Title"}
			}
			slides[0] = []string{"Networking 101", "TCP and UDP"}
			slides[10] = []string{"Summary"}

			d, err := loader.Load("lecture.pptx", buildPPTX(slides...))

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Slides).To(HaveLen(11))
			Expect(d.Slides[0].Number).To(Equal(1))
			Expect(d.Slides[0].Content).To(Equal("Networking 101\nTCP and UDP"))
			Expect(d.Slides[10].Number).To(Equal(11))
			Expect(d.Slides[10].Content).To(Equal("Summary"))
			Expect(d.Filename).To(Equal("lecture.pptx"))
		})

		It("keeps blank slides", func() {
			d, err := loader.Load("deck.PPTX", buildPPTX([]string{"One"}, nil, []string{"Three"}))

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Slides).To(HaveLen(3))
			Expect(d.Slides[1].Content).To(BeEmpty())
			Expect(d.Slides[1].IsBlank()).To(BeTrue())
		})

		It("rejects a deck without slides", func() {
			_, err := loader.Load("empty.pptx", buildPPTX())
			Expect(err).To(MatchError(deck.ErrEmptyDeck))
		})

		It("rejects a slide that expands past the limit", func() {
			bomb := buildPPTX([]string{strings.Repeat("A", 1<<20)})
			Expect(len(bomb)).To(BeNumerically("<", 64<<10))

			_, err := deck.NewLoader(64<<10).Load("bomb.pptx", bomb)
			Expect(errors.Is(err, deck.ErrDeckTooLarge)).To(BeTrue())
		})

		It("counts the limit across all slides", func() {
			text := strings.Repeat("B", 4<<10)
			data := buildPPTX([]string{text}, []string{text}, []string{text})

			_, err := deck.PPTXExtractor{MaxExtractedBytes: 10 << 10}.Extract(data)
			Expect(errors.Is(err, deck.ErrDeckTooLarge)).To(BeTrue())

			pages, err := deck.PPTXExtractor{MaxExtractedBytes: 64 << 10}.Extract(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(3))
		})

		It("rejects bytes that are not a zip archive", func() {
			_, err := loader.Load("broken.pptx", []byte("not a zip"))
			Expect(errors.Is(err, deck.ErrCorruptDeck)).To(BeTrue())
		})
	})

	Context("PDF files", func() {
		It("extracts one slide per page", func() {
			d, err := loader.Load("notes.pdf", buildPDF("Routing basics", "", "Congestion control"))

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Slides).To(HaveLen(3))
			Expect(d.Slides[0].Content).To(ContainSubstring("Routing basics"))
			Expect(d.Slides[1].Content).To(BeEmpty())
			Expect(d.Slides[2].Content).To(ContainSubstring("Congestion control"))
		})

		It("rejects unreadable documents", func() {
			_, err := loader.Load("broken.pdf", []byte("garbage"))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("formats", func() {
		It("rejects unknown extensions", func() {
			_, err := loader.Load("slides.key", []byte("x"))
			Expect(errors.Is(err, deck.ErrUnsupportedFormat)).To(BeTrue())
			Expect(loader.Supported("slides.key")).To(BeFalse())
			Expect(loader.Supported("slides.pdf")).To(BeTrue())
		})

		It("uses registered extractors", func() {
			loader.Register(".TXT", deck.ExtractorFunc(func(data []byte) ([]string, error) {
				return []string{string(data)}, nil
			}))

			d, err := loader.Load("notes.txt", []byte("plain"))
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Slides[0].Content).To(Equal("plain"))
		})
	})

	Context("content hash", func() {
		It("is a stable BLAKE2b-256 hex digest", func() {
			h := deck.Hash([]byte("abc"))
			Expect(h).To(HaveLen(64))
			Expect(h).To(Equal("bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319"))
			Expect(deck.Hash([]byte("abd"))).NotTo(Equal(h))
		})

		It("is set on loaded decks", func() {
			data := buildPPTX([]string{"x"})
			d, err := loader.Load("a.pptx", data)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.ContentHash).To(Equal(deck.Hash(data)))
		})
	})
})
