package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/parlo-app/srs-engine/internal/domain"
)

// CardStore defines the interface for vocabulary card persistence. The store
// exclusively owns all card records; other components operate on copies and
// hand changes back through Upsert.
//
// Implementations must preserve insertion order in All and ByDeckTag so that
// due-queue ordering is deterministic across runs: two cards due at the same
// instant always present in the order they were first inserted.
type CardStore interface {
	// Get retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyCard, error)

	// Upsert inserts the card, or replaces the stored record with the same
	// ID. It enforces the scheduling invariants on every call and returns
	// ErrInvalidCard (wrapping the domain validation error) if the card
	// violates them. An invariant violation indicates a caller bug, not a
	// recoverable runtime condition; the store never silently corrects the
	// record.
	//
	// Upsert is the designated merge point should a future implementation
	// add sync from another device (most recent LastReviewedAt wins). No
	// such resolution is performed today.
	Upsert(ctx context.Context, card *domain.VocabularyCard) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// All returns every card in the store in insertion order.
	All(ctx context.Context) ([]*domain.VocabularyCard, error)

	// ByDeckTag returns the cards whose deck tag equals tag, in insertion
	// order. An unknown tag yields an empty slice, not an error.
	ByDeckTag(ctx context.Context, tag string) ([]*domain.VocabularyCard, error)
}

// BatchUpserter is an optional store capability: writing several cards as a
// single atomic batch, so a failure partway leaves none of them persisted.
// Callers holding a plain CardStore fall back to per-card Upsert.
type BatchUpserter interface {
	UpsertAll(ctx context.Context, cards []*domain.VocabularyCard) error
}
