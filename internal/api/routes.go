package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/slidescry/internal/api/middleware"
)

// RegisterRoutes mounts the deck API under /api.
func RegisterRoutes(r chi.Router, h *DeckHandler, authMiddleware *middleware.AuthMiddleware) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/decks", h.UploadDeck)
		r.Get("/usage", h.Usage)

		r.Route("/deck", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/", h.GetDeck)
			r.Delete("/", h.EndSession)

			r.Get("/chat", h.ChatHistory)
			r.Post("/chat", h.Chat)

			r.Get("/tasks/{taskID}", h.GetTask)

			r.Route("/slides/{number}", func(r chi.Router) {
				r.Get("/", h.GetSlide)
				r.Post("/analysis", h.AnalyzeSlide)
				r.Post("/flashcards", h.GenerateFlashcards)
				r.Get("/flashcards.csv", h.ExportFlashcards)
			})
		})
	})
}
