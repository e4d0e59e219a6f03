package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/slidescry/internal/domain"
	"github.com/phrazzld/slidescry/internal/service"
	"github.com/phrazzld/slidescry/internal/session"
)

// MockStudyService implements service.StudyService for testing
type MockStudyService struct {
	AnalyzeFn          func(ctx context.Context, sess *session.Session, slideNumber int) (string, error)
	FlashcardsFn       func(ctx context.Context, sess *session.Session, slideNumber int, style domain.CardStyle) ([]domain.Flashcard, error)
	ExportFlashcardsFn func(sess *session.Session, slideNumber int) (domain.CardStyle, []domain.Flashcard, error)
	ChatFn             func(ctx context.Context, sess *session.Session, question string) (domain.ChatExchange, error)
	ProcessDeckFn      func(ctx context.Context, sess *session.Session) service.DeckReport

	mu    sync.Mutex
	calls []string
}

func (m *MockStudyService) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

// Calls returns the names of the methods called so far, in order.
func (m *MockStudyService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Analyze implements the service.StudyService interface
func (m *MockStudyService) Analyze(ctx context.Context, sess *session.Session, slideNumber int) (string, error) {
	m.record("Analyze")
	if m.AnalyzeFn != nil {
		return m.AnalyzeFn(ctx, sess, slideNumber)
	}
	return "", nil
}

// Flashcards implements the service.StudyService interface
func (m *MockStudyService) Flashcards(
	ctx context.Context,
	sess *session.Session,
	slideNumber int,
	style domain.CardStyle,
) ([]domain.Flashcard, error) {
	m.record("Flashcards")
	if m.FlashcardsFn != nil {
		return m.FlashcardsFn(ctx, sess, slideNumber, style)
	}
	return []domain.Flashcard{}, nil
}

// ExportFlashcards implements the service.StudyService interface
func (m *MockStudyService) ExportFlashcards(
	sess *session.Session,
	slideNumber int,
) (domain.CardStyle, []domain.Flashcard, error) {
	m.record("ExportFlashcards")
	if m.ExportFlashcardsFn != nil {
		return m.ExportFlashcardsFn(sess, slideNumber)
	}
	return "", nil, service.ErrNoFlashcards
}

// Chat implements the service.StudyService interface
func (m *MockStudyService) Chat(ctx context.Context, sess *session.Session, question string) (domain.ChatExchange, error) {
	m.record("Chat")
	if m.ChatFn != nil {
		return m.ChatFn(ctx, sess, question)
	}
	return domain.ChatExchange{}, nil
}

// ProcessDeck implements the service.StudyService interface
func (m *MockStudyService) ProcessDeck(ctx context.Context, sess *session.Session) service.DeckReport {
	m.record("ProcessDeck")
	if m.ProcessDeckFn != nil {
		return m.ProcessDeckFn(ctx, sess)
	}
	return service.DeckReport{Total: sess.SlideCount(), Analyzed: sess.SlideCount()}
}

var _ service.StudyService = (*MockStudyService)(nil)
