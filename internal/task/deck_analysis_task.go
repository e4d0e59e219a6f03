package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/slidescry/internal/service"
	"github.com/phrazzld/slidescry/internal/session"
)

// Common errors
var (
	ErrNilProcessor     = errors.New("deck processor cannot be nil")
	ErrNilSessionLookup = errors.New("session lookup cannot be nil")
	ErrEmptySessionID   = errors.New("session ID cannot be empty")
	ErrNoSlideAnalysed  = errors.New("no slide could be analysed")
)

// DeckProcessor analyses every slide of a session.
type DeckProcessor interface {
	ProcessDeck(ctx context.Context, sess *session.Session) service.DeckReport
}

// SessionLookup finds live sessions by ID.
type SessionLookup interface {
	Get(id uuid.UUID) (*session.Session, error)
}

// deckAnalysisPayload represents the serialized data stored in the task
type deckAnalysisPayload struct {
	SessionID   uuid.UUID `json:"session_id"`
	ContentHash string    `json:"content_hash"`
}

// DeckAnalysisTask implements the Task interface for analysing every slide
// of an uploaded deck in the background.
type DeckAnalysisTask struct {
	id          uuid.UUID
	sessionID   uuid.UUID
	contentHash string
	processor   DeckProcessor
	sessions    SessionLookup
	logger      *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// NewDeckAnalysisTask creates a task for the deck held by sessionID.
// contentHash pins the deck so a session replaced before the task runs is
// left alone.
func NewDeckAnalysisTask(
	sessionID uuid.UUID,
	contentHash string,
	processor DeckProcessor,
	sessions SessionLookup,
	logger *slog.Logger,
) (*DeckAnalysisTask, error) {
	if processor == nil {
		return nil, ErrNilProcessor
	}
	if sessions == nil {
		return nil, ErrNilSessionLookup
	}
	if sessionID == uuid.Nil {
		return nil, ErrEmptySessionID
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckAnalysisTask{
		id:          uuid.New(),
		sessionID:   sessionID,
		contentHash: contentHash,
		processor:   processor,
		sessions:    sessions,
		logger:      logger.With("task_type", TaskTypeDeckAnalysis, "session_id", sessionID.String()),
		status:      TaskStatusPending,
	}, nil
}

// PayloadSessionID returns the session a stored deck analysis payload
// belongs to.
func PayloadSessionID(payload []byte) (uuid.UUID, error) {
	var p deckAnalysisPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode task payload: %w", err)
	}
	return p.SessionID, nil
}

// ID returns the task's unique identifier
func (t *DeckAnalysisTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DeckAnalysisTask) Type() string {
	return TaskTypeDeckAnalysis
}

// Payload returns the task data as a byte slice
func (t *DeckAnalysisTask) Payload() []byte {
	data, err := json.Marshal(deckAnalysisPayload{SessionID: t.sessionID, ContentHash: t.contentHash})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return nil
	}
	return data
}

// Status returns the current task status
func (t *DeckAnalysisTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *DeckAnalysisTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Execute runs ProcessDeck for the session. Individual slide failures are
// recorded on the slides; the task fails only when it was interrupted or
// when no slide could be analysed.
func (t *DeckAnalysisTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	sess, err := t.sessions.Get(t.sessionID)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to load session for deck analysis: %w", err)
	}
	if sess.ContentHash != t.contentHash {
		t.logger.Info("session holds a different deck, skipping analysis",
			"expected_hash", t.contentHash,
			"actual_hash", sess.ContentHash)
		t.setStatus(TaskStatusCompleted)
		return nil
	}

	report := t.processor.ProcessDeck(ctx, sess)

	switch {
	case report.Err != nil:
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("deck analysis interrupted: %w", report.Err)
	case report.Total > 0 && len(report.Failures) == report.Total:
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("%w: %d slides failed", ErrNoSlideAnalysed, report.Total)
	}

	t.logger.Info("deck analysis finished",
		"analyzed", report.Analyzed,
		"skipped", report.Skipped,
		"failed", len(report.Failures))
	t.setStatus(TaskStatusCompleted)
	return nil
}

// DeckAnalysisTaskFactory creates DeckAnalysisTask instances
type DeckAnalysisTaskFactory struct {
	processor DeckProcessor
	sessions  SessionLookup
	logger    *slog.Logger
}

// NewDeckAnalysisTaskFactory creates a new factory for DeckAnalysisTasks
func NewDeckAnalysisTaskFactory(
	processor DeckProcessor,
	sessions SessionLookup,
	logger *slog.Logger,
) *DeckAnalysisTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckAnalysisTaskFactory{
		processor: processor,
		sessions:  sessions,
		logger:    logger.With("component", "deck_analysis_task_factory"),
	}
}

// CreateTask creates a new DeckAnalysisTask for the session's current deck
func (f *DeckAnalysisTaskFactory) CreateTask(sess *session.Session) (*DeckAnalysisTask, error) {
	return NewDeckAnalysisTask(sess.ID, sess.ContentHash, f.processor, f.sessions, f.logger)
}
