package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/slidescry/internal/config"
	"github.com/phrazzld/slidescry/internal/generation"
	"google.golang.org/genai"
)

// validateConfig checks the settings the Gemini client cannot work without.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "Missing Gemini API key")
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		logger.ErrorContext(ctx, "Missing Gemini model name")
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f is above 2", generation.ErrInvalidConfig, cfg.Temperature)
	}

	return nil
}

// contentConfig builds the per-request settings. A negative temperature
// leaves the model default in place.
func contentConfig(cfg config.LLMConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{}
	if cfg.Temperature >= 0 {
		gc.Temperature = genai.Ptr(cfg.Temperature)
	}
	return gc
}
