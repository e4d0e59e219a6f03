package prompt

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"text/template"

	"github.com/phrazzld/slidescry/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPack []byte

// ErrInvalidPack is returned when a prompt pack cannot be loaded.
var ErrInvalidPack = errors.New("invalid prompt pack")

// Pack is the YAML layout of a prompt pack.
type Pack struct {
	Analysis   string            `yaml:"analysis"`
	Flashcards map[string]string `yaml:"flashcards"`
	Chat       string            `yaml:"chat"`
}

// SlideData is the template data for a single slide.
type SlideData struct {
	Number  int
	Content string
}

// ChatData is the template data for a chat prompt.
type ChatData struct {
	Slides   []SlideData
	Question string
}

// Templates holds the parsed templates of a prompt pack.
type Templates struct {
	analysis   *template.Template
	flashcards map[domain.CardStyle]*template.Template
	chat       *template.Template
}

// Default returns the templates of the embedded prompt pack.
func Default() (*Templates, error) {
	return Parse(defaultPack)
}

// Load reads the prompt pack at path, or the embedded pack when path is empty.
func Load(path string) (*Templates, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidPack, path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML prompt pack and parses all of its templates.
func Parse(data []byte) (*Templates, error) {
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	analysis, err := parseTemplate("analysis", pack.Analysis)
	if err != nil {
		return nil, err
	}
	chat, err := parseTemplate("chat", pack.Chat)
	if err != nil {
		return nil, err
	}

	t := &Templates{
		analysis:   analysis,
		chat:       chat,
		flashcards: make(map[domain.CardStyle]*template.Template, len(domain.CardStyles)),
	}
	for _, style := range domain.CardStyles {
		tmpl, err := parseTemplate("flashcards."+string(style), pack.Flashcards[string(style)])
		if err != nil {
			return nil, err
		}
		t.flashcards[style] = tmpl
	}

	return t, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: template %s is missing", ErrInvalidPack, name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: template %s: %v", ErrInvalidPack, name, err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Analysis renders the analysis prompt for one slide.
func (t *Templates) Analysis(slide *domain.Slide) (string, error) {
	return execute(t.analysis, SlideData{Number: slide.Number, Content: slide.Content})
}

// Flashcards renders the flashcard prompt for one slide and style.
func (t *Templates) Flashcards(slide *domain.Slide, style domain.CardStyle) (string, error) {
	tmpl, ok := t.flashcards[style]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCardStyle, style)
	}
	return execute(tmpl, SlideData{Number: slide.Number, Content: slide.Content})
}

// Chat renders the chat prompt with every slide as context.
func (t *Templates) Chat(slides []*domain.Slide, question string) (string, error) {
	data := ChatData{Question: question, Slides: make([]SlideData, 0, len(slides))}
	for _, s := range slides {
		data.Slides = append(data.Slides, SlideData{Number: s.Number, Content: s.Content})
	}
	return execute(t.chat, data)
}
