package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/slidescry/internal/config"
	"github.com/phrazzld/slidescry/internal/deck"
	"github.com/phrazzld/slidescry/internal/generation"
	"github.com/phrazzld/slidescry/internal/platform/gemini"
	"github.com/phrazzld/slidescry/internal/platform/postgres"
	"github.com/phrazzld/slidescry/internal/prompt"
	"github.com/phrazzld/slidescry/internal/service"
	"github.com/phrazzld/slidescry/internal/service/auth"
	"github.com/phrazzld/slidescry/internal/session"
	"github.com/phrazzld/slidescry/internal/store"
	"github.com/phrazzld/slidescry/internal/task"
)

// shutdownTimeout bounds how long cleanup waits for background work.
const shutdownTimeout = 10 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Generation
	invoker *generation.Invoker
	prompts *prompt.Templates
	cache   store.ContentCache

	// Sessions
	loader   *deck.Loader
	sessions *session.Manager
	sweeper  *session.Sweeper

	// Service interfaces
	jwtService   auth.JWTService
	studyService service.StudyService

	// Task handling
	taskRunner  *task.TaskRunner
	taskFactory *task.DeckAnalysisTaskFactory
}

// maxExtractedBytes lets slide XML expand to ten times the upload limit.
func maxExtractedBytes(cfg config.DeckConfig) int64 {
	return 10 * (int64(cfg.MaxUploadMB) << 20)
}

// namedPruner is in-memory state the session sweeper also prunes.
type namedPruner struct {
	name   string
	pruner session.Pruner
}

// newApplication creates a new application instance with all dependencies initialized.
// db may be nil, in which case generated content is cached in memory.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	generator, err := gemini.NewGeminiGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized successfully", "model", cfg.LLM.ModelName)

	return assembleApplication(cfg, logger, db, generator)
}

// assembleApplication wires every component around an existing generator.
func assembleApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	generator generation.Generator,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		loader: deck.NewLoader(maxExtractedBytes(cfg.Deck)),
	}

	var err error
	clock := generation.SystemClock()
	app.invoker, err = generation.NewInvoker(
		generator,
		generation.NewPacer(cfg.LLM.CallsPerMinute, clock),
		generation.PolicyFromConfig(cfg.LLM),
		clock,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation invoker: %w", err)
	}

	if cfg.LLM.PromptFile != "" {
		app.prompts, err = prompt.Load(cfg.LLM.PromptFile)
	} else {
		app.prompts, err = prompt.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	var pruners []namedPruner
	if db != nil {
		app.cache = postgres.NewPostgresContentStore(db, logger)
	} else {
		memory := store.NewMemoryContentCache(
			store.WithMaxEntries(cfg.Cache.MemoryMaxEntries),
			store.WithTTL(time.Duration(cfg.Cache.MemoryTTLMinutes)*time.Minute),
		)
		app.cache = memory
		pruners = append(pruners, namedPruner{"content_cache", memory})
	}

	app.studyService, err = service.NewStudyService(app.invoker, app.prompts, app.cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("session token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	idle := time.Duration(cfg.Session.IdleTimeoutMinutes) * time.Minute
	app.sessions = session.NewManager(logger)
	app.sweeper, err = session.NewSweeper(app.sessions, cfg.Session.SweepSchedule, idle, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session sweeper: %w", err)
	}

	taskStore := task.NewMemoryTaskStore(idle)
	pruners = append(pruners, namedPruner{"tasks", taskStore})
	for _, p := range pruners {
		app.sweeper.Prune(p.name, p.pruner)
	}

	app.taskRunner = task.NewTaskRunner(taskStore, task.TaskRunnerConfigFrom(cfg.Task), logger)
	app.taskFactory = task.NewDeckAnalysisTaskFactory(app.studyService, app.sessions, logger)

	app.sweeper.Start()
	app.taskRunner.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router, err := app.setupRouter()
	if err != nil {
		app.cleanup()
		return fmt.Errorf("failed to set up router: %w", err)
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.sweeper != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := app.sweeper.Stop(ctx); err != nil {
			app.logger.Error("Error stopping session sweeper", "error", err)
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
