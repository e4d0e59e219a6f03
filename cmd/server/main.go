// Package main implements the entry point for the slidescry server, which
// turns uploaded slide decks into analyses, flashcards and a chat tutor.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phrazzld/slidescry/internal/config"
	"github.com/phrazzld/slidescry/internal/platform/logger"
	"github.com/phrazzld/slidescry/internal/platform/postgres"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional file of environment variables to load")
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	purgeHash := flag.String("purge-deck", "", "delete the cached content of a deck content hash and exit")
	flag.Parse()

	if err := run(context.Background(), *envFile, *migrateCmd, *purgeHash); err != nil {
		log.Fatalf("slidescry: %v", err)
	}
}

func run(ctx context.Context, envFile, migrateCmd, purgeHash string) error {
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	load := config.Load
	if migrateCmd != "" || purgeHash != "" {
		load = config.LoadForMaintenance
	}
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.LLM.ModelName,
		"calls_per_minute", cfg.LLM.CallsPerMinute,
		"database_configured", cfg.Database.URL != "")

	if migrateCmd != "" {
		return handleMigrations(ctx, cfg, appLogger, migrateCmd)
	}
	if purgeHash != "" {
		return purgeDeck(ctx, cfg, appLogger, purgeHash)
	}

	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadEnvFile loads path into the environment. A missing file is not an
// error; variables already set are never overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// openDatabase connects to PostgreSQL and applies pending migrations. It
// returns nil when no database is configured.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.Database.URL == "" {
		logger.Info("no database configured, generated content is cached in memory")
		return nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.MigrateUp(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("database connection established")
	return db, nil
}

// purgeDeck removes every cached generation for one deck.
func purgeDeck(ctx context.Context, cfg *config.Config, logger *slog.Logger, contentHash string) error {
	if cfg.Database.URL == "" {
		return errors.New("purging cached content requires a database URL")
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	removed, err := postgres.NewPostgresContentStore(db, logger).DeleteDeck(ctx, contentHash)
	if err != nil {
		return fmt.Errorf("failed to purge cached content: %w", err)
	}
	logger.Info("cached deck content purged", "content_hash", contentHash, "removed", removed)
	return nil
}
