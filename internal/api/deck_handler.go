package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/slidescry/internal/api/middleware"
	"github.com/phrazzld/slidescry/internal/api/shared"
	"github.com/phrazzld/slidescry/internal/deck"
	"github.com/phrazzld/slidescry/internal/domain"
	"github.com/phrazzld/slidescry/internal/flashcard"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/platform/logger"
	"github.com/phrazzld/slidescry/internal/service"
	"github.com/phrazzld/slidescry/internal/service/auth"
	"github.com/phrazzld/slidescry/internal/session"
	"github.com/phrazzld/slidescry/internal/task"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to temporary files.
const multipartMemory = 8 << 20

// noCardsNotice accompanies an empty flashcard list.
const noCardsNotice = "The response contained no flashcards in the expected format."

// SessionStore creates, replaces and ends study sessions.
type SessionStore interface {
	Upload(id uuid.UUID, d *deck.Deck) (*session.Session, session.UploadResult)
	Delete(id uuid.UUID) error
}

// TaskQueue accepts background tasks and reports their state.
type TaskQueue interface {
	Submit(ctx context.Context, t task.Task) error
	Status(ctx context.Context, id uuid.UUID) (task.TaskRecord, error)
}

// AnalysisTaskFactory builds whole-deck analysis tasks.
type AnalysisTaskFactory interface {
	CreateTask(sess *session.Session) (*task.DeckAnalysisTask, error)
}

// BudgetReporter exposes the generation call budget.
type BudgetReporter interface {
	Budget() generation.CallBudget
}

// DeckHandlerDeps groups the collaborators of a DeckHandler.
type DeckHandlerDeps struct {
	Loader       *deck.Loader
	Sessions     SessionStore
	StudyService service.StudyService
	JWTService   auth.JWTService
	Auth         *middleware.AuthMiddleware
	// Tasks and TaskFactory are optional. Without them uploads are not
	// analysed in the background.
	Tasks       TaskQueue
	TaskFactory AnalysisTaskFactory
	Budget      BudgetReporter
}

// DeckHandlerConfig holds the request limits of a DeckHandler.
type DeckHandlerConfig struct {
	MaxUploadBytes  int64
	AnalyzeOnUpload bool
}

// DeckHandler serves the deck, slide, flashcard and chat endpoints.
type DeckHandler struct {
	deps   DeckHandlerDeps
	config DeckHandlerConfig
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
// It returns an error if a required dependency is missing.
func NewDeckHandler(deps DeckHandlerDeps, cfg DeckHandlerConfig, logger *slog.Logger) (*DeckHandler, error) {
	switch {
	case deps.Loader == nil:
		return nil, errors.New("deck loader cannot be nil")
	case deps.Sessions == nil:
		return nil, errors.New("session store cannot be nil")
	case deps.StudyService == nil:
		return nil, errors.New("study service cannot be nil")
	case deps.JWTService == nil:
		return nil, errors.New("jwt service cannot be nil")
	case deps.Auth == nil:
		return nil, errors.New("auth middleware cannot be nil")
	case deps.Budget == nil:
		return nil, errors.New("budget reporter cannot be nil")
	case cfg.MaxUploadBytes <= 0:
		return nil, errors.New("max upload size must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckHandler{
		deps:   deps,
		config: cfg,
		logger: logger.With("component", "deck_handler"),
	}, nil
}

// UploadResponse is returned after a deck upload.
type UploadResponse struct {
	SessionID      uuid.UUID `json:"session_id"`
	Token          string    `json:"token"`
	ExpiresAt      string    `json:"expires_at"`
	ContentHash    string    `json:"content_hash"`
	Filename       string    `json:"filename"`
	Result         string    `json:"result"`
	Slides         int       `json:"slides"`
	AnalysisTaskID string    `json:"analysis_task_id,omitempty"`
}

// AnalysisResponse carries the analysis of one slide.
type AnalysisResponse struct {
	SlideNumber int    `json:"slide_number"`
	Analysis    string `json:"analysis"`
}

// FlashcardsRequest selects the card style to generate.
type FlashcardsRequest struct {
	Style string `json:"style" validate:"required"`
}

// FlashcardsResponse carries the flashcards of one slide.
type FlashcardsResponse struct {
	SlideNumber int                `json:"slide_number"`
	Style       domain.CardStyle   `json:"style"`
	StyleLabel  string             `json:"style_label"`
	Flashcards  []domain.Flashcard `json:"flashcards"`
	Notice      string             `json:"notice,omitempty"`
}

// ChatRequest is one question about the deck.
type ChatRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}

// ChatHistoryResponse lists the chat messages of a session in order.
type ChatHistoryResponse struct {
	History []domain.ChatMessage `json:"history"`
}

// UploadDeck handles POST /api/decks.
func (h *DeckHandler) UploadDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "A deck file is required", err)
		return
	}
	defer func() { _ = file.Close() }()

	if !h.deps.Loader.Supported(header.Filename) {
		HandleAPIError(w, r, fmt.Errorf("%w: %q", deck.ErrUnsupportedFormat, header.Filename), "")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}

	d, err := h.deps.Loader.Load(header.Filename, data)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read deck")
		return
	}

	sessionID := uuid.Nil
	if existing := h.deps.Auth.Resolve(r); existing != nil {
		sessionID = existing.ID
	}
	sess, result := h.deps.Sessions.Upload(sessionID, d)

	token, expiresAt, err := h.deps.JWTService.GenerateToken(r.Context(), sess.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue session token")
		return
	}

	resp := UploadResponse{
		SessionID:   sess.ID,
		Token:       token,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		ContentHash: sess.ContentHash,
		Filename:    sess.Filename,
		Result:      result.String(),
		Slides:      sess.SlideCount(),
	}
	if result != session.UploadReused {
		resp.AnalysisTaskID = h.enqueueAnalysis(r.Context(), log, sess)
	}

	log.Info("deck uploaded",
		"session_id", sess.ID.String(),
		"filename", sess.Filename,
		"slides", resp.Slides,
		"result", resp.Result)

	status := http.StatusOK
	if result == session.UploadCreated {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, resp)
}

// enqueueAnalysis submits whole-deck analysis when enabled. Failures are
// logged; the upload itself still succeeds.
func (h *DeckHandler) enqueueAnalysis(ctx context.Context, log *slog.Logger, sess *session.Session) string {
	if !h.config.AnalyzeOnUpload || h.deps.Tasks == nil || h.deps.TaskFactory == nil {
		return ""
	}

	t, err := h.deps.TaskFactory.CreateTask(sess)
	if err != nil {
		log.Error("failed to create deck analysis task", "error", err, "session_id", sess.ID.String())
		return ""
	}
	if err := h.deps.Tasks.Submit(ctx, t); err != nil {
		log.Warn("failed to submit deck analysis task", "error", err, "session_id", sess.ID.String())
		return ""
	}
	return t.ID().String()
}

// GetDeck handles GET /api/deck.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sess.Snapshot())
}

// EndSession handles DELETE /api/deck.
func (h *DeckHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.deps.Sessions.Delete(sess.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSlide handles GET /api/deck/slides/{number}.
func (h *DeckHandler) GetSlide(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := h.sessionAndSlide(w, r)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	if n > len(snap.Slides) {
		HandleAPIError(w, r, service.ErrSlideNotFound, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap.Slides[n-1])
}

// AnalyzeSlide handles POST /api/deck/slides/{number}/analysis.
func (h *DeckHandler) AnalyzeSlide(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := h.sessionAndSlide(w, r)
	if !ok {
		return
	}

	analysis, err := h.deps.StudyService.Analyze(r.Context(), sess, n)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to analyse slide")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AnalysisResponse{SlideNumber: n, Analysis: analysis})
}

// GenerateFlashcards handles POST /api/deck/slides/{number}/flashcards.
func (h *DeckHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := h.sessionAndSlide(w, r)
	if !ok {
		return
	}

	var req FlashcardsRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	style, err := domain.ParseCardStyle(req.Style)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.deps.StudyService.Flashcards(r.Context(), sess, n, style)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate flashcards")
		return
	}

	resp := FlashcardsResponse{SlideNumber: n, Style: style, StyleLabel: style.Label(), Flashcards: cards}
	if len(cards) == 0 {
		resp.Notice = noCardsNotice
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ExportFlashcards handles GET /api/deck/slides/{number}/flashcards.csv.
func (h *DeckHandler) ExportFlashcards(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := h.sessionAndSlide(w, r)
	if !ok {
		return
	}

	style, cards, err := h.deps.StudyService.ExportFlashcards(sess, n)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export flashcards")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", flashcard.ExportFilename(n, style)))
	w.WriteHeader(http.StatusOK)
	if err := flashcard.WriteCSV(w, style, cards); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to write flashcard export",
			"error", err, "slide_number", n)
	}
}

// Chat handles POST /api/deck/chat.
func (h *DeckHandler) Chat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	exchange, err := h.deps.StudyService.Chat(r.Context(), sess, req.Question)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to answer question")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, exchange)
}

// ChatHistory handles GET /api/deck/chat.
func (h *DeckHandler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ChatHistoryResponse{History: sess.Snapshot().History})
}

// GetTask handles GET /api/deck/tasks/{taskID}. Only tasks of the caller's
// session are visible.
func (h *DeckHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.deps.Tasks == nil {
		HandleAPIError(w, r, task.ErrTaskNotFound, "")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid task ID", err)
		return
	}

	record, err := h.deps.Tasks.Status(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}
	owner, err := task.PayloadSessionID(record.Payload)
	if err != nil || owner != sess.ID {
		HandleAPIError(w, r, task.ErrTaskNotFound, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// Usage handles GET /api/usage.
func (h *DeckHandler) Usage(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.deps.Budget.Budget())
}

func (h *DeckHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := shared.GetSession(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return sess, true
}

func (h *DeckHandler) sessionAndSlide(w http.ResponseWriter, r *http.Request) (*session.Session, int, bool) {
	sess, ok := h.session(w, r)
	if !ok {
		return nil, 0, false
	}
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || n < 1 {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid slide number", err)
		return nil, 0, false
	}
	if n > sess.SlideCount() {
		HandleAPIError(w, r, service.ErrSlideNotFound, "")
		return nil, 0, false
	}
	return sess, n, true
}
