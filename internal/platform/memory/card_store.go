// Package memory provides an in-memory implementation of the store
// interfaces, used for tests and single-session local runs.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/store"
)

// CardStore implements store.CardStore backed by a process-local map.
// Insertion order is tracked explicitly so All and ByDeckTag are
// deterministic, which the due queue relies on for tie-breaking.
type CardStore struct {
	mu     sync.RWMutex
	cards  map[uuid.UUID]*domain.VocabularyCard
	order  []uuid.UUID
	logger *slog.Logger
}

// Ensure CardStore implements the store interfaces
var (
	_ store.CardStore     = (*CardStore)(nil)
	_ store.BatchUpserter = (*CardStore)(nil)
)

// NewCardStore creates a new empty in-memory card store.
// If logger is nil, a default logger will be used.
func NewCardStore(logger *slog.Logger) *CardStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		cards:  make(map[uuid.UUID]*domain.VocabularyCard),
		order:  nil,
		logger: logger.With(slog.String("component", "memory_card_store")),
	}
}

// Get implements store.CardStore.Get.
func (s *CardStore) Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}

	// Hand out a copy so callers cannot mutate owned state.
	return card.Clone(), nil
}

// Upsert implements store.CardStore.Upsert. The stored record is a copy of
// the argument; later caller mutations are not visible in the store.
func (s *CardStore) Upsert(ctx context.Context, card *domain.VocabularyCard) error {
	if card == nil {
		return fmt.Errorf("%w: nil card", store.ErrInvalidCard)
	}

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidCard, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[card.ID]; !exists {
		s.order = append(s.order, card.ID)
	}
	s.cards[card.ID] = card.Clone()

	return nil
}

// UpsertAll implements store.BatchUpserter. Every card is validated before
// any is written, so an invalid card leaves the store untouched.
func (s *CardStore) UpsertAll(ctx context.Context, cards []*domain.VocabularyCard) error {
	for _, card := range cards {
		if card == nil {
			return fmt.Errorf("%w: nil card", store.ErrInvalidCard)
		}
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidCard, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range cards {
		if _, exists := s.cards[card.ID]; !exists {
			s.order = append(s.order, card.ID)
		}
		s.cards[card.ID] = card.Clone()
	}

	return nil
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}

	delete(s.cards, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

// All implements store.CardStore.All, returning cards in insertion order.
func (s *CardStore) All(ctx context.Context) ([]*domain.VocabularyCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]*domain.VocabularyCard, 0, len(s.order))
	for _, id := range s.order {
		cards = append(cards, s.cards[id].Clone())
	}

	return cards, nil
}

// ByDeckTag implements store.CardStore.ByDeckTag.
func (s *CardStore) ByDeckTag(ctx context.Context, tag string) ([]*domain.VocabularyCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cards []*domain.VocabularyCard
	for _, id := range s.order {
		if card := s.cards[id]; card.DeckTag == tag {
			cards = append(cards, card.Clone())
		}
	}

	return cards, nil
}
