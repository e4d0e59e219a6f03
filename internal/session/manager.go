package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slidescry/internal/deck"
)

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// UploadResult tells what Upload did with a deck.
type UploadResult int

const (
	// UploadCreated means a new session was created.
	UploadCreated UploadResult = iota
	// UploadReused means the deck matched the session's content hash.
	UploadReused
	// UploadReplaced means the session's state was replaced by the new deck.
	UploadReplaced
)

func (r UploadResult) String() string {
	switch r {
	case UploadReused:
		return "reused"
	case UploadReplaced:
		return "replaced"
	default:
		return "created"
	}
}

// Manager owns all live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty session manager.
func NewManager(logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		sessions: make(map[uuid.UUID]*Session),
		now:      time.Now,
		logger:   logger.With("component", "session_manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session for d.
func (m *Manager) Create(d *deck.Deck) *Session {
	s := newSession(uuid.New(), d, m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created",
		"session_id", s.ID.String(),
		"slides", len(d.Slides),
		"content_hash", d.ContentHash)
	return s
}

// Get returns the session with id and marks it active.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Upload attaches d to the session with id. When id is unknown (or Nil) a
// new session is created. When the session already holds a deck with the
// same content hash it is kept as is. Otherwise its state is replaced by a
// fresh session with the same ID.
func (m *Manager) Upload(id uuid.UUID, d *deck.Deck) (*Session, UploadResult) {
	if id == uuid.Nil {
		return m.Create(d), UploadCreated
	}

	m.mu.Lock()
	existing, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return m.Create(d), UploadCreated
	}

	if existing.ContentHash == d.ContentHash {
		m.mu.Unlock()
		existing.touch(m.now())
		return existing, UploadReused
	}

	replacement := newSession(id, d, m.now())
	m.sessions[id] = replacement
	m.mu.Unlock()

	m.logger.Info("session replaced by new deck",
		"session_id", id.String(),
		"old_content_hash", existing.ContentHash,
		"new_content_hash", d.ContentHash)
	return replacement, UploadReplaced
}

// Delete removes the session with id.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions that have been idle for longer than idle and
// returns how many were removed.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("expired idle sessions", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}
