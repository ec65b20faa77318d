package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/parlo-app/srs-engine/internal/api"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	cardHandler := api.NewCardHandler(app.cards, app.dueQueue, app.scheduler, app.logger)
	sessionHandler := api.NewSessionHandler(app.reviewService, app.logger)
	deckHandler := api.NewDeckHandler(app.deckIndex, app.logger)
	generationHandler := api.NewGenerationHandler(app.generator, app.cards, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Card management
		r.Post("/cards", cardHandler.CreateCard)
		r.Get("/cards/next", cardHandler.GetNextReviewCard)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Put("/cards/{id}", cardHandler.EditCard)
		r.Delete("/cards/{id}", cardHandler.DeleteCard)
		r.Post("/cards/{id}/postpone", cardHandler.PostponeCard)

		// Review sessions
		r.Post("/sessions", sessionHandler.StartSession)
		r.Get("/sessions/{id}", sessionHandler.GetSession)
		r.Post("/sessions/{id}/reveal", sessionHandler.Reveal)
		r.Post("/sessions/{id}/grade", sessionHandler.Grade)
		r.Delete("/sessions/{id}", sessionHandler.AbandonSession)

		// Deck dashboard
		r.Get("/decks", deckHandler.ListDecks)
		r.Get("/decks/{tag}", deckHandler.GetDeckCounts)

		// Adaptive generation
		r.Post("/generate", generationHandler.GenerateCards)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
