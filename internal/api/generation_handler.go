package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/parlo-app/srs-engine/internal/api/shared"
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/generation"
	"github.com/parlo-app/srs-engine/internal/platform/logger"
	"github.com/parlo-app/srs-engine/internal/store"
)

// defaultWeakTopicLimit bounds how many weak topics a single generation
// request targets when the caller does not name topics.
const defaultWeakTopicLimit = 3

// GenerationHandler handles adaptive card generation HTTP requests.
type GenerationHandler struct {
	generator *generation.AdaptiveGenerator
	cards     store.CardStore
	logger    *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(
	generator *generation.AdaptiveGenerator,
	cards store.CardStore,
	logger *slog.Logger,
) *GenerationHandler {
	if logger == nil {
		panic("logger cannot be nil for GenerationHandler")
	}

	return &GenerationHandler{
		generator: generator,
		cards:     cards,
		logger:    logger.With(slog.String("component", "generation_handler")),
	}
}

// GenerateCards handles POST /generate requests. Without explicit topics it
// targets the learner's weakest topics; generated cards are inserted into
// the store due immediately.
func (h *GenerationHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.generator == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable,
			"Card generation is not configured")
		return
	}

	var req GenerateCardsRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	topics := req.Topics
	if len(topics) == 0 {
		limit := req.TopicLimit
		if limit <= 0 {
			limit = defaultWeakTopicLimit
		}

		weak, err := h.generator.WeakTopics(r.Context(), limit)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r,
				MapErrorToStatusCode(err), "Failed to rank weak topics", err)
			return
		}
		topics = weak
	}

	cards, err := h.generator.Generate(r.Context(), topics)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.persist(r.Context(), cards); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := GenerateCardsResponse{Cards: make([]CardResponse, 0, len(cards))}
	for _, card := range cards {
		resp.Cards = append(resp.Cards, cardToResponse(card))
	}

	log.Debug("generated and stored cards",
		slog.Int("topics", len(topics)),
		slog.Int("cards", len(resp.Cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// persist writes the generated batch, atomically when the store supports it.
func (h *GenerationHandler) persist(ctx context.Context, cards []*domain.VocabularyCard) error {
	if batch, ok := h.cards.(store.BatchUpserter); ok {
		return batch.UpsertAll(ctx, cards)
	}

	for _, card := range cards {
		if err := h.cards.Upsert(ctx, card); err != nil {
			return err
		}
	}
	return nil
}
