package generation

import "context"

// Generator defines the interface for turning a prompt into generated text.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Generator interface {
	// Generate sends prompt to the model and returns the produced text.
	// Errors are wrapped around the sentinels in errors.go so callers can
	// classify them with errors.Is.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
