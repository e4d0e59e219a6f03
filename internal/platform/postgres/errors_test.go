package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/slidescry/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "no rows",
			err:      sql.ErrNoRows,
			expected: store.ErrNotFound,
		},
		{
			name:     "wrapped no rows",
			err:      fmt.Errorf("scan: %w", sql.ErrNoRows),
			expected: store.ErrNotFound,
		},
		{
			name:     "check violation",
			err:      &pgconn.PgError{Code: checkViolationCode, ConstraintName: "generated_content_slide_number_check"},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation",
			err:      &pgconn.PgError{Code: notNullViolationCode, ColumnName: "body"},
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tt.err), tt.expected)
		})
	}

	assert.NoError(t, MapError(nil))

	other := errors.New("connection reset")
	assert.Equal(t, other, MapError(other))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir(migrationsDir)
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
