// Package task runs background work such as whole-deck analysis after an
// upload, so HTTP handlers return before every slide has been generated.
// Task status is kept in a TaskStore and can be polled by ID.
package task
