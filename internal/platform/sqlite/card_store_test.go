package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/platform/sqlite"
	"github.com/parlo-app/srs-engine/internal/store"
)

func newTestStore(t *testing.T) *sqlite.CardStore {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { _ = db.Close() })

	// Keep one connection: every pooled connection to :memory: would get
	// its own empty database.
	db.SetMaxOpenConns(1)

	return sqlite.NewCardStore(db, nil)
}

func newCard(t *testing.T, front, tag string) *domain.VocabularyCard {
	t.Helper()
	card, err := domain.NewCard(front, front+" (en)", tag, domain.DifficultyMedium)
	require.NoError(t, err)
	return card
}

func TestCardStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	card := newCard(t, "gato", "daily")
	card.Pronunciation = "GAH-toh"
	card.Example = "El gato duerme."
	require.NoError(t, s.Upsert(ctx, card))

	got, err := s.Get(ctx, card.ID)
	require.NoError(t, err)

	assert.Equal(t, card.ID, got.ID)
	assert.Equal(t, card.Front, got.Front)
	assert.Equal(t, card.Back, got.Back)
	assert.Equal(t, card.Pronunciation, got.Pronunciation)
	assert.Equal(t, card.Example, got.Example)
	assert.Equal(t, card.DeckTag, got.DeckTag)
	assert.Equal(t, card.Difficulty, got.Difficulty)
	assert.Equal(t, card.EaseFactor, got.EaseFactor)
	assert.Equal(t, card.IntervalDays, got.IntervalDays)
	assert.Equal(t, card.Repetitions, got.Repetitions)
	assert.Equal(t, card.Lapses, got.Lapses)
	assert.True(t, got.DueAt.Equal(card.DueAt))
	assert.False(t, got.Reviewed(), "unreviewed card must round-trip as unreviewed")
}

func TestCardStoreReviewedTimestampRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	card := newCard(t, "gato", "daily")
	card.Repetitions = 1
	card.IntervalDays = 1
	card.LastReviewedAt = now
	card.DueAt = now.AddDate(0, 0, 1)
	require.NoError(t, s.Upsert(ctx, card))

	got, err := s.Get(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, got.Reviewed())
	assert.True(t, got.LastReviewedAt.Equal(now))
}

func TestCardStoreGetNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestCardStoreUpsertValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	bad := newCard(t, "gato", "daily")
	bad.EaseFactor = 1.0

	err := s.Upsert(ctx, bad)
	assert.ErrorIs(t, err, store.ErrInvalidCard)

	assert.ErrorIs(t, s.Upsert(ctx, nil), store.ErrInvalidCard)
}

func TestCardStoreOrderSurvivesUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	var want []uuid.UUID
	for i := 0; i < 5; i++ {
		card := newCard(t, fmt.Sprintf("palabra-%d", i), "daily")
		require.NoError(t, s.Upsert(ctx, card))
		want = append(want, card.ID)
	}

	// Upsert the first card again; it must keep its original position.
	first, err := s.Get(ctx, want[0])
	require.NoError(t, err)
	first.Repetitions = 1
	first.IntervalDays = 1
	first.LastReviewedAt = time.Now().UTC()
	require.NoError(t, s.Upsert(ctx, first))

	cards, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, cards, len(want))
	for i, card := range cards {
		assert.Equal(t, want[i], card.ID, "position %d", i)
	}
}

func TestCardStoreByDeckTag(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	daily1 := newCard(t, "gato", "daily")
	travel := newCard(t, "aeropuerto", "travel")
	daily2 := newCard(t, "perro", "daily")
	for _, c := range []*domain.VocabularyCard{daily1, travel, daily2} {
		require.NoError(t, s.Upsert(ctx, c))
	}

	cards, err := s.ByDeckTag(ctx, "daily")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, daily1.ID, cards[0].ID)
	assert.Equal(t, daily2.ID, cards[1].ID)

	none, err := s.ByDeckTag(ctx, "song")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCardStoreUpsertAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	batch := []*domain.VocabularyCard{
		newCard(t, "uno", "daily"),
		newCard(t, "dos", "daily"),
		newCard(t, "tres", "travel"),
	}
	require.NoError(t, s.UpsertAll(ctx, batch))

	cards, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	for i, card := range cards {
		assert.Equal(t, batch[i].ID, card.ID)
	}

	t.Run("invalid card rejects the batch before any write", func(t *testing.T) {
		bad := newCard(t, "cinco", "daily")
		bad.EaseFactor = 0.1

		err := s.UpsertAll(ctx, []*domain.VocabularyCard{newCard(t, "cuatro", "daily"), bad})
		assert.ErrorIs(t, err, store.ErrInvalidCard)

		cards, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, cards, 3)
	})
}

func TestCardStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	card := newCard(t, "gato", "daily")
	require.NoError(t, s.Upsert(ctx, card))

	require.NoError(t, s.Delete(ctx, card.ID))
	_, err := s.Get(ctx, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	assert.ErrorIs(t, s.Delete(ctx, card.ID), store.ErrCardNotFound)
}
