package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/slidescry/internal/platform/logger"
	"github.com/phrazzld/slidescry/internal/store"
)

// PostgresContentStore implements the store.ContentCache interface
// using a PostgreSQL database as the storage backend.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresContentStore implements store.ContentCache interface
var _ store.ContentCache = (*PostgresContentStore)(nil)

// NewPostgresContentStore creates a new PostgreSQL implementation of the ContentCache interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Get implements store.ContentCache.Get.
// Returns store.ErrContentNotFound if nothing is cached under key.
func (s *PostgresContentStore) Get(ctx context.Context, key store.ContentKey) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := key.Validate(); err != nil {
		return "", err
	}

	query := `
		SELECT body
		FROM generated_content
		WHERE content_hash = $1 AND slide_number = $2 AND kind = $3 AND style = $4
	`

	var body string
	err := s.db.QueryRowContext(ctx, query,
		key.ContentHash, key.SlideNumber, string(key.Kind), string(key.Style),
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("generated content not cached",
				slog.Int("slide_number", key.SlideNumber),
				slog.String("kind", string(key.Kind)))
			return "", store.ErrContentNotFound
		}
		log.Error("failed to get generated content",
			slog.String("error", err.Error()),
			slog.Int("slide_number", key.SlideNumber))
		return "", store.NewStoreError("generated_content", "get", "query failed", MapError(err))
	}

	return body, nil
}

// Put implements store.ContentCache.Put.
// An existing entry with the same key is overwritten.
func (s *PostgresContentStore) Put(ctx context.Context, key store.ContentKey, body string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := key.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO generated_content (content_hash, slide_number, kind, style, body)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (content_hash, slide_number, kind, style)
		DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		key.ContentHash, key.SlideNumber, string(key.Kind), string(key.Style), body,
	)
	if err != nil {
		log.Error("failed to store generated content",
			slog.String("error", err.Error()),
			slog.Int("slide_number", key.SlideNumber),
			slog.String("kind", string(key.Kind)))
		return store.NewStoreError("generated_content", "put", "upsert failed", MapError(err))
	}

	log.Debug("generated content stored",
		slog.Int("slide_number", key.SlideNumber),
		slog.String("kind", string(key.Kind)),
		slog.Int("body_length", len(body)))
	return nil
}

// DeleteDeck implements store.ContentCache.DeleteDeck.
func (s *PostgresContentStore) DeleteDeck(ctx context.Context, contentHash string) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM generated_content WHERE content_hash = $1`, contentHash)
	if err != nil {
		log.Error("failed to delete generated content", slog.String("error", err.Error()))
		return 0, store.NewStoreError("generated_content", "delete", "delete failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("generated_content", "delete", "rows affected unavailable", err)
	}

	log.Info("generated content deleted", slog.Int64("rows", n))
	return n, nil
}
