package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/slidescry/internal/config"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/mocks"
	"github.com/phrazzld/slidescry/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Auth: config.AuthConfig{
			JWTSecret:            "0123456789abcdef0123456789abcdef",
			TokenLifetimeMinutes: 60,
		},
		LLM: config.LLMConfig{
			GeminiAPIKey:             "test-key",
			ModelName:                "gemini-test",
			CallsPerMinute:           60,
			RetryInitialDelaySeconds: 1,
			RetryMaxDelaySeconds:     2,
			RetryDeadlineSeconds:     5,
			Temperature:              -1,
		},
		Deck:    config.DeckConfig{MaxUploadMB: 1},
		Session: config.SessionConfig{IdleTimeoutMinutes: 30, SweepSchedule: "@every 10m"},
		Task:    config.TaskConfig{WorkerCount: 1, QueueSize: 4},
		Cache:   config.CacheConfig{MemoryMaxEntries: 100, MemoryTTLMinutes: 60},
	}
}

func testApp(t *testing.T, cfg *config.Config) *application {
	t.Helper()
	app, err := assembleApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil,
		&mocks.MockGenerator{Text: "generated"})
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func TestAssembleApplication(t *testing.T) {
	app := testApp(t, testConfig())

	assert.IsType(t, &store.MemoryContentCache{}, app.cache)
	assert.NotNil(t, app.studyService)
	assert.NotNil(t, app.taskFactory)
}

func TestAssembleApplication_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SweepSchedule = "every now and then"

	_, err := assembleApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, &mocks.MockGenerator{})
	assert.Error(t, err)
}

func TestAssembleApplication_PromptFile(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.PromptFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := assembleApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, &mocks.MockGenerator{})
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	app := testApp(t, testConfig())
	router, err := app.setupRouter()
	require.NoError(t, err)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	})

	t.Run("usage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var budget generation.CallBudget
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &budget))
		assert.Zero(t, budget.CallCount)
	})

	t.Run("deck requires a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deck", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(""))
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SLIDESCRY_TEST_ENV_FILE=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SLIDESCRY_TEST_ENV_FILE") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("SLIDESCRY_TEST_ENV_FILE"))
}

func TestHandleMigrations_Validation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()

	assert.Error(t, handleMigrations(context.Background(), cfg, logger, "sideways"))
	assert.Error(t, handleMigrations(context.Background(), cfg, logger, "up"), "no database URL")
}
