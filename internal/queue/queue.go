// Package queue computes the ordered set of cards currently due for review.
package queue

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/store"
)

// DueQueue is a read-through view over the card store. It holds no state of
// its own: every call recomputes the queue from the store, so it can never
// go stale after a grade is persisted. Recomputation is acceptable for
// per-user card counts in the thousands.
type DueQueue struct {
	cards  store.CardStore
	logger *slog.Logger
}

// NewDueQueue creates a due queue reading from the given card store.
// If logger is nil, a default logger will be used.
func NewDueQueue(cards store.CardStore, logger *slog.Logger) *DueQueue {
	if cards == nil {
		panic("cards store cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &DueQueue{
		cards:  cards,
		logger: logger.With(slog.String("component", "due_queue")),
	}
}

// DueNow returns the cards in the deck whose due time is at or before the
// given instant, ordered most overdue first (dueAt ascending). Cards due at
// the identical instant keep their store insertion order, so repeated
// queries always present them in the same relative order.
func (q *DueQueue) DueNow(
	ctx context.Context,
	at time.Time,
	filter domain.DeckFilter,
) ([]*domain.VocabularyCard, error) {
	all, err := q.cards.All(ctx)
	if err != nil {
		return nil, err
	}

	var due []*domain.VocabularyCard
	for _, card := range all {
		if filter.Matches(card) && !card.DueAt.After(at) {
			due = append(due, card)
		}
	}

	// Stable sort preserves the store's insertion order for equal due times.
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueAt.Before(due[j].DueAt)
	})

	q.logger.Debug("computed due queue",
		slog.Time("at", at),
		slog.Int("total", len(all)),
		slog.Int("due", len(due)))

	return due, nil
}
