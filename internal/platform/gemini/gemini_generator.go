package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/slidescry/internal/config"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/redact"
	"google.golang.org/genai"
)

// contentGenerator is the subset of the genai Models service used here.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// models performs the GenerateContent calls
	models contentGenerator

	// model is the name of the Gemini model to use
	model string

	// contentConfig holds per-request generation settings
	contentConfig *genai.GenerateContentConfig
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new instance of GeminiGenerator with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and other settings
//
// Returns:
//   - A properly initialized GeminiGenerator or an error if initialization fails
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return newGeminiGenerator(logger, client.Models, cfg), nil
}

func newGeminiGenerator(logger *slog.Logger, models contentGenerator, cfg config.LLMConfig) *GeminiGenerator {
	return &GeminiGenerator{
		logger:        logger.With("component", "gemini_generator"),
		models:        models,
		model:         cfg.ModelName,
		contentConfig: contentConfig(cfg),
	}
}

// Generate sends one prompt to Gemini and returns the concatenated text of
// the first candidate. Each call is a single attempt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.DebugContext(ctx, "Making Gemini API call",
		"model", g.model,
		"prompt_length", len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.contentConfig)
	if err != nil {
		classified := classifyCallError(err)
		g.logger.WarnContext(ctx, "Gemini API call error",
			"error", redact.Error(classified),
			"retryable", generation.IsRetryable(classified))
		return "", classified
	}

	text, err := responseText(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "Gemini API returned no usable answer",
			"error", redact.Error(err),
			"retryable", generation.IsRetryable(err))
		return "", err
	}

	g.logger.DebugContext(ctx, "Gemini API call successful",
		"response_length", len(text))

	return text, nil
}
