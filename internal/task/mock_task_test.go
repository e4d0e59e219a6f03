package task

import (
	"context"

	"github.com/google/uuid"
)

// MockTask is a simple implementation of the Task interface for testing
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	ExecuteFn   func(ctx context.Context) error
}

// NewMockTask creates a new MockTask that succeeds
func NewMockTask(taskType string) *MockTask {
	return &MockTask{
		TaskID:    uuid.New(),
		TaskType:  taskType,
		ExecuteFn: func(ctx context.Context) error { return nil },
	}
}

func (t *MockTask) ID() uuid.UUID                     { return t.TaskID }
func (t *MockTask) Type() string                      { return t.TaskType }
func (t *MockTask) Payload() []byte                   { return t.TaskPayload }
func (t *MockTask) Status() TaskStatus                { return TaskStatusPending }
func (t *MockTask) Execute(ctx context.Context) error { return t.ExecuteFn(ctx) }
