package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/parlo-app/srs-engine/internal/api/shared"
	"github.com/parlo-app/srs-engine/internal/deck"
	"github.com/parlo-app/srs-engine/internal/domain"
)

// DeckHandler handles deck dashboard HTTP requests.
type DeckHandler struct {
	index  *deck.Index
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(index *deck.Index, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		panic("logger cannot be nil for DeckHandler")
	}

	return &DeckHandler{
		index:  index,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /decks requests, returning total and due counts per
// source deck tag.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.index.Summaries(r.Context(), time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to list decks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summaries)
}

// GetDeckCounts handles GET /decks/{tag} requests.
func (h *DeckHandler) GetDeckCounts(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	filter := domain.ByTag(tag)
	now := time.Now().UTC()

	total, err := h.index.Count(r.Context(), filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to count deck", err)
		return
	}

	due, err := h.index.DueCount(r.Context(), filter, now)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to count due cards", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeckCountsResponse{
		Tag:   tag,
		Total: total,
		Due:   due,
	})
}
