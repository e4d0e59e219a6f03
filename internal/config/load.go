package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. SLIDESCRY_LLM_GEMINI_API_KEY.
const EnvPrefix = "SLIDESCRY"

// secretKeys have no defaults and must be bound explicitly so that
// AutomaticEnv picks them up during Unmarshal.
var secretKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"llm.gemini_api_key",
	"llm.prompt_file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_minutes", 24*60)

	v.SetDefault("llm.model_name", "gemini-1.5-pro")
	v.SetDefault("llm.calls_per_minute", 15)
	v.SetDefault("llm.retry_initial_delay_seconds", 1)
	v.SetDefault("llm.retry_max_delay_seconds", 10)
	v.SetDefault("llm.retry_deadline_seconds", 300)
	v.SetDefault("llm.temperature", -1)

	v.SetDefault("deck.max_upload_mb", 50)

	v.SetDefault("session.idle_timeout_minutes", 120)
	v.SetDefault("session.sweep_schedule", "@every 10m")

	v.SetDefault("task.worker_count", 1)
	v.SetDefault("task.queue_size", 16)
	v.SetDefault("task.analyze_on_upload", true)

	v.SetDefault("cache.memory_max_entries", 10000)
	v.SetDefault("cache.memory_ttl_minutes", 24*60)
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the config file. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadForMaintenance loads configuration like Load but validates only the
// server and database sections. The generation API key and the token secret
// may be absent.
func LoadForMaintenance() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := v.Struct(cfg.Database); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func read() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
