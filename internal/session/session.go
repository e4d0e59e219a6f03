package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slidescry/internal/deck"
	"github.com/phrazzld/slidescry/internal/domain"
)

// Session is the study state of one uploaded deck.
//
// Slides and history may only be read or changed while holding the session
// lock (Lock/Unlock). ID, ContentHash, Filename and CreatedAt never change.
type Session struct {
	ID          uuid.UUID
	ContentHash string
	Filename    string
	CreatedAt   time.Time

	mu         sync.Mutex
	slides     []*domain.Slide
	history    []domain.ChatMessage
	lastActive atomic.Int64
}

func newSession(id uuid.UUID, d *deck.Deck, now time.Time) *Session {
	s := &Session{
		ID:          id,
		ContentHash: d.ContentHash,
		Filename:    d.Filename,
		CreatedAt:   now.UTC(),
		slides:      d.Slides,
	}
	s.touch(now)
	return s
}

// Lock acquires the session lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Slides returns the slides in order. The caller must hold the lock.
func (s *Session) Slides() []*domain.Slide {
	return s.slides
}

// SlideCount returns the number of slides. The count never changes, so no
// lock is needed.
func (s *Session) SlideCount() int {
	return len(s.slides)
}

// Slide returns slide n (1-based). The caller must hold the lock.
func (s *Session) Slide(n int) (*domain.Slide, bool) {
	if n < 1 || n > len(s.slides) {
		return nil, false
	}
	return s.slides[n-1], true
}

// History returns the chat history. The caller must hold the lock.
func (s *Session) History() []domain.ChatMessage {
	return s.history
}

// AppendHistory adds messages to the end of the history. The caller must
// hold the lock.
func (s *Session) AppendHistory(msgs ...domain.ChatMessage) {
	s.history = append(s.history, msgs...)
}

// LastActive returns when the session was last used.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load()).UTC()
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// Snapshot is a copy of a session's state that is safe to use without the lock.
type Snapshot struct {
	ID          uuid.UUID            `json:"session_id"`
	ContentHash string               `json:"content_hash"`
	Filename    string               `json:"filename"`
	CreatedAt   time.Time            `json:"created_at"`
	LastActive  time.Time            `json:"last_active"`
	Slides      []domain.Slide       `json:"slides"`
	History     []domain.ChatMessage `json:"history"`
}

// Snapshot copies the session state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.ID,
		ContentHash: s.ContentHash,
		Filename:    s.Filename,
		CreatedAt:   s.CreatedAt,
		LastActive:  s.LastActive(),
		Slides:      make([]domain.Slide, len(s.slides)),
		History:     make([]domain.ChatMessage, len(s.history)),
	}
	for i, slide := range s.slides {
		snap.Slides[i] = *slide
		snap.Slides[i].Flashcards = append([]domain.Flashcard(nil), slide.Flashcards...)
	}
	copy(snap.History, s.history)
	return snap
}
