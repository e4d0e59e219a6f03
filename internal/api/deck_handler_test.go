package api_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/slidescry/internal/api"
	"github.com/phrazzld/slidescry/internal/api/middleware"
	"github.com/phrazzld/slidescry/internal/api/shared"
	"github.com/phrazzld/slidescry/internal/deck"
	"github.com/phrazzld/slidescry/internal/domain"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/mocks"
	"github.com/phrazzld/slidescry/internal/session"
	"github.com/phrazzld/slidescry/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budgetFunc func() generation.CallBudget

func (f budgetFunc) Budget() generation.CallBudget { return f() }

type testServer struct {
	router   http.Handler
	manager  *session.Manager
	study    *mocks.MockStudyService
	runner   *task.TaskRunner
	lastCall time.Time
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer builds the API around a loader that reads ".txt" decks
// whose slides are separated by form feeds.
func newTestServer(t *testing.T, analyzeOnUpload bool) *testServer {
	t.Helper()

	log := quietLogger()
	loader := deck.NewLoader(0)
	loader.Register(".txt", deck.ExtractorFunc(func(data []byte) ([]string, error) {
		if len(data) == 0 {
			return nil, nil
		}
		return strings.Split(string(data), "\f"), nil
	}))

	ts := &testServer{
		manager:  session.NewManager(log),
		study:    &mocks.MockStudyService{},
		runner:   task.NewTaskRunner(task.NewMemoryTaskStore(0), task.DefaultTaskRunnerConfig(), log),
		lastCall: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	jwtService := mocks.NewMockJWTServiceForSession(time.Now().Add(time.Hour))
	authMiddleware := middleware.NewAuthMiddleware(jwtService, ts.manager)

	handler, err := api.NewDeckHandler(api.DeckHandlerDeps{
		Loader:       loader,
		Sessions:     ts.manager,
		StudyService: ts.study,
		JWTService:   jwtService,
		Auth:         authMiddleware,
		Tasks:        ts.runner,
		TaskFactory:  task.NewDeckAnalysisTaskFactory(ts.study, ts.manager, log),
		Budget: budgetFunc(func() generation.CallBudget {
			return generation.CallBudget{CallCount: 7, LastCallAt: ts.lastCall}
		}),
	}, api.DeckHandlerConfig{MaxUploadBytes: 1 << 16, AnalyzeOnUpload: analyzeOnUpload}, log)
	require.NoError(t, err)

	r := chi.NewRouter()
	api.RegisterRoutes(r, handler, authMiddleware)
	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(t *testing.T, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return ts.do(t, http.MethodPost, "/api/decks", token, &buf, mw.FormDataContentType())
}

func (ts *testServer) uploadOK(t *testing.T, content string) api.UploadResponse {
	t.Helper()
	rec := ts.upload(t, "", "lecture.txt", content)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewDeckHandler_Validation(t *testing.T) {
	_, err := api.NewDeckHandler(api.DeckHandlerDeps{}, api.DeckHandlerConfig{MaxUploadBytes: 1}, nil)
	assert.Error(t, err)
}

func TestUploadDeck(t *testing.T) {
	ts := newTestServer(t, false)

	resp := ts.uploadOK(t, "Cells\fMitochondria\f")

	assert.Equal(t, "created", resp.Result)
	assert.Equal(t, 3, resp.Slides)
	assert.Equal(t, "lecture.txt", resp.Filename)
	assert.Equal(t, deck.Hash([]byte("Cells\fMitochondria\f")), resp.ContentHash)
	assert.Equal(t, resp.SessionID.String(), resp.Token)
	assert.Empty(t, resp.AnalysisTaskID)
	assert.Equal(t, 1, ts.manager.Len())
}

func TestUploadDeck_ReuseAndReplace(t *testing.T) {
	ts := newTestServer(t, false)
	first := ts.uploadOK(t, "Cells\fMitochondria")

	rec := ts.upload(t, first.Token, "lecture.txt", "Cells\fMitochondria")
	require.Equal(t, http.StatusOK, rec.Code)
	var reused api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reused))
	assert.Equal(t, "reused", reused.Result)
	assert.Equal(t, first.SessionID, reused.SessionID)

	rec = ts.upload(t, first.Token, "lecture-v2.txt", "Cells\fRibosomes\fProteins")
	require.Equal(t, http.StatusOK, rec.Code)
	var replaced api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	assert.Equal(t, "replaced", replaced.Result)
	assert.Equal(t, first.SessionID, replaced.SessionID)
	assert.Equal(t, 3, replaced.Slides)
	assert.NotEqual(t, first.ContentHash, replaced.ContentHash)
	assert.Equal(t, 1, ts.manager.Len())
}

func TestUploadDeck_Errors(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
	}{
		{name: "unsupported format", filename: "notes.docx", content: "x", status: http.StatusUnsupportedMediaType},
		{name: "empty deck", filename: "empty.txt", content: "", status: http.StatusBadRequest},
		{name: "too large", filename: "big.txt", content: strings.Repeat("a", 1<<17), status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.upload(t, "", tt.filename, tt.content)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("note", "no file"))
		require.NoError(t, mw.Close())
		rec := ts.do(t, http.MethodPost, "/api/decks", "", &buf, mw.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUploadDeck_EnqueuesAnalysis(t *testing.T) {
	ts := newTestServer(t, true)
	resp := ts.uploadOK(t, "Cells\fMitochondria")
	require.NotEmpty(t, resp.AnalysisTaskID)

	rec := ts.do(t, http.MethodGet, "/api/deck/tasks/"+resp.AnalysisTaskID, resp.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var record task.TaskRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, task.TaskTypeDeckAnalysis, record.Type)
	assert.Equal(t, task.TaskStatusPending, record.Status)

	other := ts.uploadOK(t, "Another deck")
	rec = ts.do(t, http.MethodGet, "/api/deck/tasks/"+resp.AnalysisTaskID, other.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "tasks of other sessions are hidden")

	rec = ts.do(t, http.MethodGet, "/api/deck/tasks/not-a-uuid", resp.Token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDeckAndSlide(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells\fMitochondria")

	rec := ts.do(t, http.MethodGet, "/api/deck", resp.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, resp.SessionID, snap.ID)
	require.Len(t, snap.Slides, 2)
	assert.Equal(t, "Mitochondria", snap.Slides[1].Content)

	rec = ts.do(t, http.MethodGet, "/api/deck/slides/2", resp.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var slide domain.Slide
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slide))
	assert.Equal(t, 2, slide.Number)

	rec = ts.do(t, http.MethodGet, "/api/deck/slides/3", resp.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/deck/slides/zero", resp.Token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/deck", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEndSession(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells")

	rec := ts.do(t, http.MethodDelete, "/api/deck", resp.Token, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, ts.manager.Len())

	rec = ts.do(t, http.MethodGet, "/api/deck", resp.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeSlide(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells\fMitochondria")

	ts.study.AnalyzeFn = func(_ context.Context, sess *session.Session, n int) (string, error) {
		assert.Equal(t, resp.SessionID, sess.ID)
		return fmt.Sprintf("analysis of slide %d", n), nil
	}

	rec := ts.do(t, http.MethodPost, "/api/deck/slides/2/analysis", resp.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body api.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, api.AnalysisResponse{SlideNumber: 2, Analysis: "analysis of slide 2"}, body)
}

func TestAnalyzeSlide_GenerationErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "retry deadline", err: fmt.Errorf("%w: %w", generation.ErrRetryDeadlineExceeded, generation.ErrGenerationFailed), status: http.StatusServiceUnavailable},
		{name: "quota", err: generation.ErrQuotaExhausted, status: http.StatusServiceUnavailable},
		{name: "blocked", err: generation.ErrContentBlocked, status: http.StatusUnprocessableEntity},
		{name: "failed", err: fmt.Errorf("upstream 500 key=secret: %w", generation.ErrGenerationFailed), status: http.StatusBadGateway},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			resp := ts.uploadOK(t, "Cells")
			ts.study.AnalyzeFn = func(context.Context, *session.Session, int) (string, error) {
				return "", tt.err
			}

			rec := ts.do(t, http.MethodPost, "/api/deck/slides/1/analysis", resp.Token, nil, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, decodeError(t, rec).Error, "secret")
		})
	}
}

func TestGenerateFlashcards(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells")

	var gotStyle domain.CardStyle
	ts.study.FlashcardsFn = func(_ context.Context, _ *session.Session, _ int, style domain.CardStyle) ([]domain.Flashcard, error) {
		gotStyle = style
		return []domain.Flashcard{{Style: style, Question: "Cell", Answer: "Unit of life"}}, nil
	}

	rec := ts.do(t, http.MethodPost, "/api/deck/slides/1/flashcards", resp.Token,
		strings.NewReader(`{"style":"Term/Definition"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.CardStyleTermDefinition, gotStyle)

	var body api.FlashcardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Flashcards, 1)
	assert.Equal(t, "Term/Definition", body.StyleLabel)
	assert.Empty(t, body.Notice)
}

func TestGenerateFlashcards_NoCards(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells")

	rec := ts.do(t, http.MethodPost, "/api/deck/slides/1/flashcards", resp.Token,
		strings.NewReader(`{"style":"qa"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.FlashcardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Flashcards)
	assert.Empty(t, body.Flashcards)
	assert.NotEmpty(t, body.Notice)
}

func TestGenerateFlashcards_BadRequests(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells")

	for name, body := range map[string]string{
		"unknown style": `{"style":"essay"}`,
		"missing style": `{}`,
		"malformed":     `{"style":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/deck/slides/1/flashcards", resp.Token,
				strings.NewReader(body), "application/json")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.NotContains(t, ts.study.Calls(), "Flashcards")
}

func TestExportFlashcards(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells")

	rec := ts.do(t, http.MethodGet, "/api/deck/slides/1/flashcards.csv", resp.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing generated yet")

	ts.study.ExportFlashcardsFn = func(*session.Session, int) (domain.CardStyle, []domain.Flashcard, error) {
		return domain.CardStyleQA, []domain.Flashcard{
			{Style: domain.CardStyleQA, Question: "What is a cell?", Answer: "The unit of life, basically"},
		}, nil
	}

	rec = ts.do(t, http.MethodGet, "/api/deck/slides/1/flashcards.csv", resp.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "slide_1_qa_flashcards.csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"What is a cell?", "The unit of life, basically"}, rows[1])
}

func TestChat(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.uploadOK(t, "Cells")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ts.study.ChatFn = func(_ context.Context, sess *session.Session, question string) (domain.ChatExchange, error) {
		q, err := domain.NewChatMessage(domain.ChatRoleUser, question, now)
		require.NoError(t, err)
		a, err := domain.NewChatMessage(domain.ChatRoleAssistant, "Slide 1 covers cells.", now)
		require.NoError(t, err)
		sess.Lock()
		sess.AppendHistory(q, a)
		sess.Unlock()
		return domain.ChatExchange{Question: q, Answer: a}, nil
	}

	rec := ts.do(t, http.MethodPost, "/api/deck/chat", resp.Token,
		strings.NewReader(`{"question":"What is slide 1 about?"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var exchange domain.ChatExchange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exchange))
	assert.Equal(t, "Slide 1 covers cells.", exchange.Answer.Content)

	rec = ts.do(t, http.MethodGet, "/api/deck/chat", resp.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history api.ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.History, 2)
	assert.Equal(t, domain.ChatRoleUser, history.History[0].Role)
	assert.Equal(t, domain.ChatRoleAssistant, history.History[1].Role)

	rec = ts.do(t, http.MethodPost, "/api/deck/chat", resp.Token,
		strings.NewReader(`{"question":""}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsage(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/usage", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var budget generation.CallBudget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &budget))
	assert.Equal(t, 7, budget.CallCount)
	assert.True(t, ts.lastCall.Equal(budget.LastCallAt))
}

func TestUnknownSessionToken(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/api/deck", uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
