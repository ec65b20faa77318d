// Package deck aggregates per-deck card counts for dashboard display.
package deck

import (
	"context"
	"log/slog"
	"time"

	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/queue"
	"github.com/parlo-app/srs-engine/internal/store"
)

// Summary holds the total and due card counts for one named deck.
type Summary struct {
	Tag   string `json:"tag"`
	Total int    `json:"total"`
	Due   int    `json:"due"`
}

// Index exposes per-deck counts. It is pure aggregation over the card store
// and due queue with no independent state, so it can never diverge from the
// source of truth.
type Index struct {
	cards  store.CardStore
	due    *queue.DueQueue
	logger *slog.Logger
}

// NewIndex creates a deck index over the given store and due queue.
// If logger is nil, a default logger will be used.
func NewIndex(cards store.CardStore, due *queue.DueQueue, logger *slog.Logger) *Index {
	if cards == nil {
		panic("cards store cannot be nil")
	}
	if due == nil {
		panic("due queue cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Index{
		cards:  cards,
		due:    due,
		logger: logger.With(slog.String("component", "deck_index")),
	}
}

// Count returns the number of cards in the deck selected by the filter.
func (i *Index) Count(ctx context.Context, filter domain.DeckFilter) (int, error) {
	all, err := i.cards.All(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, card := range all {
		if filter.Matches(card) {
			count++
		}
	}

	return count, nil
}

// DueCount returns the number of cards in the deck due at the given instant.
func (i *Index) DueCount(ctx context.Context, filter domain.DeckFilter, at time.Time) (int, error) {
	due, err := i.due.DueNow(ctx, at, filter)
	if err != nil {
		return 0, err
	}

	return len(due), nil
}

// Summaries returns one summary per distinct source deck tag, in the order
// the tags first appear in the store.
func (i *Index) Summaries(ctx context.Context, at time.Time) ([]Summary, error) {
	all, err := i.cards.All(ctx)
	if err != nil {
		return nil, err
	}

	byTag := make(map[string]*Summary)
	var tags []string
	for _, card := range all {
		s, ok := byTag[card.DeckTag]
		if !ok {
			s = &Summary{Tag: card.DeckTag}
			byTag[card.DeckTag] = s
			tags = append(tags, card.DeckTag)
		}
		s.Total++
		if !card.DueAt.After(at) {
			s.Due++
		}
	}

	summaries := make([]Summary, 0, len(tags))
	for _, tag := range tags {
		summaries = append(summaries, *byTag[tag])
	}

	return summaries, nil
}
