package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRetention is how long a finished task record is kept when no
// retention is configured.
const DefaultRetention = 2 * time.Hour

// MemoryTaskStore keeps task records in process memory. Finished records
// are dropped by Prune once they are older than the retention.
type MemoryTaskStore struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]TaskRecord
	retention time.Duration
	now       func() time.Time
}

var _ TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty store. A non-positive retention uses
// DefaultRetention.
func NewMemoryTaskStore(retention time.Duration) *MemoryTaskStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryTaskStore{
		records:   make(map[uuid.UUID]TaskRecord),
		retention: retention,
		now:       time.Now,
	}
}

// SaveTask implements TaskStore.
func (s *MemoryTaskStore) SaveTask(ctx context.Context, task Task) error {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[task.ID()] = TaskRecord{
		ID:        task.ID(),
		Type:      task.Type(),
		Status:    task.Status(),
		Payload:   task.Payload(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// UpdateTaskStatus implements TaskStore.
func (s *MemoryTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	record.Status = status
	record.Error = errorMsg
	record.UpdatedAt = s.now().UTC()
	s.records[taskID] = record
	return nil
}

// GetTask implements TaskStore.
func (s *MemoryTaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[taskID]
	if !ok {
		return TaskRecord{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return record, nil
}

// Prune removes completed and failed records last updated more than the
// retention before now. Pending and processing records are kept.
func (s *MemoryTaskStore) Prune(now time.Time) int {
	cutoff := now.Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.records {
		finished := record.Status == TaskStatusCompleted || record.Status == TaskStatusFailed
		if finished && record.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}
