package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeDeckAnalysis analyses every slide of a session's deck
	TaskTypeDeckAnalysis = "deck_analysis"
)

// ErrTaskNotFound is returned by a TaskStore for unknown task IDs.
var ErrTaskNotFound = errors.New("task not found")

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskRecord is the stored state of a task.
type TaskRecord struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Status    TaskStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	Payload   []byte     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskStore defines the interface for recording task state
type TaskStore interface {
	// SaveTask records a newly submitted task
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetTask returns the record of a task or ErrTaskNotFound
	GetTask(ctx context.Context, taskID uuid.UUID) (TaskRecord, error)
}
