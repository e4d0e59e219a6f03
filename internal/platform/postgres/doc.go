// Package postgres provides PostgreSQL implementations of the store interfaces.
//
// It opens connections through the pgx stdlib driver, applies the embedded
// goose migrations, and maps PostgreSQL errors onto the store error values.
package postgres
