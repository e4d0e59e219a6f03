package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/slidescry/internal/api"
	apiMiddleware "github.com/phrazzld/slidescry/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.sessions)

	deckHandler, err := api.NewDeckHandler(api.DeckHandlerDeps{
		Loader:       app.loader,
		Sessions:     app.sessions,
		StudyService: app.studyService,
		JWTService:   app.jwtService,
		Auth:         authMiddleware,
		Tasks:        app.taskRunner,
		TaskFactory:  app.taskFactory,
		Budget:       app.invoker,
	}, api.DeckHandlerConfig{
		MaxUploadBytes:  int64(app.config.Deck.MaxUploadMB) << 20,
		AnalyzeOnUpload: app.config.Task.AnalyzeOnUpload,
	}, app.logger)
	if err != nil {
		return nil, err
	}

	api.RegisterRoutes(r, deckHandler, authMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r, nil
}
