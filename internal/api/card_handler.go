// Package api provides HTTP handlers for the API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/parlo-app/srs-engine/internal/api/shared"
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/platform/logger"
	"github.com/parlo-app/srs-engine/internal/queue"
	"github.com/parlo-app/srs-engine/internal/srs"
	"github.com/parlo-app/srs-engine/internal/store"
)

// CardHandler handles card management HTTP requests.
type CardHandler struct {
	cards     store.CardStore
	due       *queue.DueQueue
	scheduler srs.Scheduler
	logger    *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(
	cards store.CardStore,
	due *queue.DueQueue,
	scheduler srs.Scheduler,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cards:     cards,
		due:       due,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /cards requests. New cards enter the store in the
// default scheduling state and are due immediately.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	difficulty := domain.Difficulty(req.Difficulty)
	if req.Difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	card, err := domain.NewCard(req.Front, req.Back, req.DeckTag, difficulty)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	card.Pronunciation = req.Pronunciation
	card.Example = req.Example

	if err := h.cards.Upsert(r.Context(), card); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("created card", slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// GetCard handles GET /cards/{id} requests.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cardID(w, r)
	if !ok {
		return
	}

	card, err := h.cards.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetNextReviewCard handles GET /cards/next requests. It returns the most
// overdue card for the requested deck, or 204 when nothing is due.
func (h *CardHandler) GetNextReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	filter := domain.DeckFilter{
		Tag:        r.URL.Query().Get("deck_tag"),
		Difficulty: domain.Difficulty(r.URL.Query().Get("difficulty")),
	}

	due, err := h.due.DueNow(r.Context(), time.Now().UTC(), filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to get next review card", err)
		return
	}

	if len(due) == 0 {
		log.Debug("no cards due for review")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(due[0]))
}

// EditCard handles PUT /cards/{id} requests. Only content fields change;
// scheduling state is untouched.
func (h *CardHandler) EditCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cardID(w, r)
	if !ok {
		return
	}

	var req EditCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.cards.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := card.UpdateContent(req.Front, req.Back, req.Pronunciation, req.Example); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cards.Upsert(r.Context(), card); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DeleteCard handles DELETE /cards/{id} requests.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cardID(w, r)
	if !ok {
		return
	}

	if err := h.cards.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PostponeCard handles POST /cards/{id}/postpone requests, pushing the
// card's due time forward without recording a review.
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.cardID(w, r)
	if !ok {
		return
	}

	var req PostponeCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.cards.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	postponed, err := h.scheduler.Postpone(card, req.Days, time.Now().UTC())
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cards.Upsert(r.Context(), postponed); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("postponed card",
		slog.String("card_id", id.String()),
		slog.Int("days", req.Days),
		slog.Time("due_at", postponed.DueAt))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(postponed))
}

// cardID parses the {id} URL parameter, writing a 400 response on failure.
func (h *CardHandler) cardID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return uuid.Nil, false
	}
	return id, true
}
