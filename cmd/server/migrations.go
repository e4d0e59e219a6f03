package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/slidescry/internal/config"
	"github.com/phrazzld/slidescry/internal/platform/postgres"
)

var migrateCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
}

// handleMigrations runs a single migration command against the configured
// database. It's called from run() when the -migrate flag is set.
func handleMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if !migrateCommands[command] {
		return fmt.Errorf("unsupported migration command %q", command)
	}
	if cfg.Database.URL == "" {
		return errors.New("migrations require a database URL")
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	return postgres.Migrate(ctx, db, logger, command)
}
