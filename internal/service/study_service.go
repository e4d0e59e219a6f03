package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/slidescry/internal/domain"
	"github.com/phrazzld/slidescry/internal/flashcard"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/platform/logger"
	"github.com/phrazzld/slidescry/internal/prompt"
	"github.com/phrazzld/slidescry/internal/redact"
	"github.com/phrazzld/slidescry/internal/session"
	"github.com/phrazzld/slidescry/internal/store"
	"golang.org/x/sync/singleflight"
)

// StudyService turns slide text into study material.
type StudyService interface {
	// Analyze returns the analysis of one slide, generating it on first use.
	Analyze(ctx context.Context, sess *session.Session, slideNumber int) (string, error)

	// Flashcards returns the flashcards of one slide in the given style,
	// generating them on first use. A response with no parseable cards
	// yields an empty slice and is not cached.
	Flashcards(
		ctx context.Context,
		sess *session.Session,
		slideNumber int,
		style domain.CardStyle,
	) ([]domain.Flashcard, error)

	// ExportFlashcards returns the flashcards already generated for a slide.
	ExportFlashcards(sess *session.Session, slideNumber int) (domain.CardStyle, []domain.Flashcard, error)

	// Chat answers a question using every slide of the deck as context and
	// records the exchange in the session history.
	Chat(ctx context.Context, sess *session.Session, question string) (domain.ChatExchange, error)

	// ProcessDeck analyses every slide in order. A failing slide does not
	// stop the others.
	ProcessDeck(ctx context.Context, sess *session.Session) DeckReport
}

// SlideFailure is one slide that could not be analysed.
type SlideFailure struct {
	SlideNumber int    `json:"slide_number"`
	Error       string `json:"error"`
}

// DeckReport summarizes a ProcessDeck run.
type DeckReport struct {
	Total    int            `json:"total"`
	Analyzed int            `json:"analyzed"`
	Skipped  int            `json:"skipped"`
	Failures []SlideFailure `json:"failures,omitempty"`
	// Err is set when the run stopped early because ctx was done.
	Err error `json:"-"`
}

type studyServiceImpl struct {
	generator generation.Generator
	prompts   *prompt.Templates
	cache     store.ContentCache
	now       func() time.Time
	logger    *slog.Logger
	flights   singleflight.Group
}

// NewStudyService creates a new StudyService.
// It returns an error if any of the required dependencies are nil.
func NewStudyService(
	generator generation.Generator,
	prompts *prompt.Templates,
	cache store.ContentCache,
	logger *slog.Logger,
) (StudyService, error) {
	if generator == nil {
		return nil, &StudyServiceError{Operation: "create_service", Message: "generator cannot be nil"}
	}
	if prompts == nil {
		return nil, &StudyServiceError{Operation: "create_service", Message: "prompts cannot be nil"}
	}
	if cache == nil {
		return nil, &StudyServiceError{Operation: "create_service", Message: "cache cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		generator: generator,
		prompts:   prompts,
		cache:     cache,
		now:       time.Now,
		logger:    logger.With("component", "study_service"),
	}, nil
}

func (s *studyServiceImpl) log(ctx context.Context, sess *session.Session) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger).With(
		"session_id", sess.ID.String(),
		"content_hash", sess.ContentHash,
	)
}

func (s *studyServiceImpl) Analyze(
	ctx context.Context,
	sess *session.Session,
	slideNumber int,
) (string, error) {
	sess.Lock()
	slide, ok := sess.Slide(slideNumber)
	analysis := ""
	if ok {
		analysis = slide.Analysis
	}
	sess.Unlock()

	if !ok {
		return "", ErrSlideNotFound
	}
	if analysis != "" {
		return analysis, nil
	}
	return s.analyze(ctx, sess, slide)
}

// analyze generates the analysis of slide. Concurrent calls for the same
// slide share one generation. The session lock is only held while reading
// or writing the slide, never across the generation call.
func (s *studyServiceImpl) analyze(
	ctx context.Context,
	sess *session.Session,
	slide *domain.Slide,
) (string, error) {
	key := store.ContentKey{
		ContentHash: sess.ContentHash,
		SlideNumber: slide.Number,
		Kind:        store.ContentKindAnalysis,
	}

	v, err := s.shared(ctx, flightKey(sess, key), func() (any, error) {
		log := s.log(ctx, sess).With("slide_number", slide.Number)

		sess.Lock()
		if slide.HasAnalysis() {
			analysis := slide.Analysis
			sess.Unlock()
			return analysis, nil
		}
		text, err := s.prompts.Analysis(slide)
		sess.Unlock()
		if err != nil {
			return nil, NewStudyServiceError("analyze", "failed to build analysis prompt", err)
		}

		if body, ok := s.cached(ctx, log, key); ok {
			sess.Lock()
			slide.SetAnalysis(body)
			sess.Unlock()
			log.Debug("analysis served from content cache")
			return body, nil
		}

		body, err := s.generator.Generate(ctx, text)

		sess.Lock()
		if err != nil {
			slide.RecordError(failureMessage(err))
			sess.Unlock()
			log.Error("analysis generation failed", "error", redact.Error(err))
			return nil, NewStudyServiceError("analyze", "failed to generate analysis", err)
		}
		slide.SetAnalysis(body)
		blank := slide.IsBlank()
		sess.Unlock()

		s.store(ctx, log, key, body)
		log.Info("slide analysed", "blank", blank)
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *studyServiceImpl) Flashcards(
	ctx context.Context,
	sess *session.Session,
	slideNumber int,
	style domain.CardStyle,
) ([]domain.Flashcard, error) {
	if !style.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCardStyle, style)
	}

	sess.Lock()
	slide, ok := sess.Slide(slideNumber)
	var cards []domain.Flashcard
	found := false
	if ok {
		cards, found = slide.CachedFlashcards(style)
		cards = cloneCards(cards)
	}
	sess.Unlock()

	if !ok {
		return nil, ErrSlideNotFound
	}
	if found {
		return cards, nil
	}

	key := store.ContentKey{
		ContentHash: sess.ContentHash,
		SlideNumber: slide.Number,
		Kind:        store.ContentKindFlashcards,
		Style:       style,
	}

	v, err := s.shared(ctx, flightKey(sess, key), func() (any, error) {
		return s.generateFlashcards(ctx, sess, slide, key)
	})
	if err != nil {
		return nil, err
	}
	return cloneCards(v.([]domain.Flashcard)), nil
}

func (s *studyServiceImpl) generateFlashcards(
	ctx context.Context,
	sess *session.Session,
	slide *domain.Slide,
	key store.ContentKey,
) ([]domain.Flashcard, error) {
	style := key.Style
	log := s.log(ctx, sess).With("slide_number", slide.Number, "style", string(style))

	sess.Lock()
	if cards, ok := slide.CachedFlashcards(style); ok {
		cards = cloneCards(cards)
		sess.Unlock()
		return cards, nil
	}
	text, err := s.prompts.Flashcards(slide, style)
	sess.Unlock()
	if err != nil {
		return nil, NewStudyServiceError("flashcards", "failed to build flashcard prompt", err)
	}

	if body, ok := s.cached(ctx, log, key); ok {
		if cards := flashcard.Parse(body, style); len(cards) > 0 {
			sess.Lock()
			slide.SetFlashcards(style, cloneCards(cards))
			sess.Unlock()
			log.Debug("flashcards served from content cache", "count", len(cards))
			return cards, nil
		}
	}

	body, err := s.generator.Generate(ctx, text)
	if err != nil {
		sess.Lock()
		slide.RecordError(failureMessage(err))
		sess.Unlock()
		log.Error("flashcard generation failed", "error", redact.Error(err))
		return nil, NewStudyServiceError("flashcards", "failed to generate flashcards", err)
	}

	cards := flashcard.Parse(body, style)
	log.Debug("flashcards parsed", "count", len(cards))

	sess.Lock()
	if len(cards) == 0 {
		slide.RecordError("The response contained no flashcards in the expected format.")
		sess.Unlock()
		return []domain.Flashcard{}, nil
	}
	slide.SetFlashcards(style, cloneCards(cards))
	sess.Unlock()

	s.store(ctx, log, key, body)
	return cards, nil
}

func (s *studyServiceImpl) ExportFlashcards(
	sess *session.Session,
	slideNumber int,
) (domain.CardStyle, []domain.Flashcard, error) {
	sess.Lock()
	defer sess.Unlock()

	slide, ok := sess.Slide(slideNumber)
	if !ok {
		return "", nil, ErrSlideNotFound
	}
	if len(slide.Flashcards) == 0 {
		return "", nil, ErrNoFlashcards
	}
	return slide.FlashcardStyle, cloneCards(slide.Flashcards), nil
}

func (s *studyServiceImpl) Chat(
	ctx context.Context,
	sess *session.Session,
	question string,
) (domain.ChatExchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ChatExchange{}, ErrEmptyQuestion
	}

	log := s.log(ctx, sess)
	asked := s.now()

	sess.Lock()
	text, err := s.prompts.Chat(sess.Slides(), question)
	sess.Unlock()
	if err != nil {
		return domain.ChatExchange{}, NewStudyServiceError("chat", "failed to build chat prompt", err)
	}

	answer, err := s.generator.Generate(ctx, text)
	if err != nil {
		log.Error("chat generation failed", "error", redact.Error(err))
		return domain.ChatExchange{}, NewStudyServiceError("chat", "failed to generate answer", err)
	}

	q, err := domain.NewChatMessage(domain.ChatRoleUser, question, asked)
	if err != nil {
		return domain.ChatExchange{}, NewStudyServiceError("chat", "invalid question message", err)
	}
	a, err := domain.NewChatMessage(domain.ChatRoleAssistant, answer, s.now())
	if err != nil {
		return domain.ChatExchange{}, NewStudyServiceError("chat", "invalid answer message", err)
	}

	exchange := domain.ChatExchange{Question: q, Answer: a}

	sess.Lock()
	sess.AppendHistory(exchange.Messages()...)
	historyLength := len(sess.History())
	sess.Unlock()

	log.Info("chat question answered", "history_length", historyLength)
	return exchange, nil
}

func (s *studyServiceImpl) ProcessDeck(ctx context.Context, sess *session.Session) DeckReport {
	log := s.log(ctx, sess)
	report := DeckReport{Total: sess.SlideCount()}

	for n := 1; n <= report.Total; n++ {
		if err := ctx.Err(); err != nil {
			report.Err = err
			log.Warn("deck processing stopped", "error", err, "next_slide", n)
			break
		}
		s.processSlide(ctx, sess, n, &report)
	}

	log.Info("deck processed",
		"total", report.Total,
		"analyzed", report.Analyzed,
		"skipped", report.Skipped,
		"failed", len(report.Failures))
	return report
}

// processSlide analyses one slide. Requests for other slides, reads and
// chat proceed while it waits on the generator.
func (s *studyServiceImpl) processSlide(
	ctx context.Context,
	sess *session.Session,
	n int,
	report *DeckReport,
) {
	sess.Lock()
	slide, ok := sess.Slide(n)
	done := ok && slide.HasAnalysis()
	sess.Unlock()

	if !ok {
		return
	}
	if done {
		report.Skipped++
		return
	}
	if _, err := s.analyze(ctx, sess, slide); err != nil {
		report.Failures = append(report.Failures, SlideFailure{
			SlideNumber: n,
			Error:       failureMessage(err),
		})
		return
	}
	report.Analyzed++
}

// shared runs fn once per key among concurrent callers. A caller whose
// context ends stops waiting without cancelling the other callers.
func (s *studyServiceImpl) shared(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	select {
	case res := <-s.flights.DoChan(key, fn):
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func flightKey(sess *session.Session, key store.ContentKey) string {
	return fmt.Sprintf("%s/%d/%s/%s", sess.ID, key.SlideNumber, key.Kind, key.Style)
}

// cached looks key up in the shared cache. Lookup failures other than a
// miss are logged and treated as a miss.
func (s *studyServiceImpl) cached(ctx context.Context, log *slog.Logger, key store.ContentKey) (string, bool) {
	body, err := s.cache.Get(ctx, key)
	if err == nil {
		return body, true
	}
	if !store.IsNotFoundError(err) {
		log.Warn("content cache lookup failed", "error", redact.Error(err))
	}
	return "", false
}

func (s *studyServiceImpl) store(ctx context.Context, log *slog.Logger, key store.ContentKey, body string) {
	if err := s.cache.Put(ctx, key, body); err != nil {
		log.Warn("failed to store generated content", "error", redact.Error(err), "kind", string(key.Kind))
	}
}

func cloneCards(cards []domain.Flashcard) []domain.Flashcard {
	return append([]domain.Flashcard(nil), cards...)
}
