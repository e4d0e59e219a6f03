package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/slidescry/internal/platform/postgres"
	"github.com/phrazzld/slidescry/internal/redact"
)

// URLEnv names the variable holding the test database URL.
const URLEnv = "SLIDESCRY_TEST_DB_URL"

var (
	migrateOnce sync.Once
	migrateErr  error
)

// URL returns the test database URL, skipping t when none is configured.
func URL(t *testing.T) string {
	t.Helper()
	dbURL := os.Getenv(URLEnv)
	if dbURL == "" {
		t.Skipf("%s not set, skipping database test", URLEnv)
	}
	return dbURL
}

// Open connects to the test database and applies migrations once per test
// binary. The connection is closed when t finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dbURL := URL(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to open test database: %s", redact.Error(err))
	}
	t.Cleanup(func() { _ = db.Close() })

	migrateOnce.Do(func() {
		migrateErr = postgres.MigrateUp(ctx, db, nil)
	})
	if migrateErr != nil {
		t.Fatalf("failed to migrate test database: %s", redact.Error(migrateErr))
	}
	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}

	defer func() {
		// sql.ErrTxDone is expected if fn already ended the transaction
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
