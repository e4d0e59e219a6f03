// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. The content cache defined here has an
// in-memory implementation in this package and a PostgreSQL implementation
// in internal/platform/postgres.
package store
