package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlo-app/srs-engine/internal/domain"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	t.Run("initializes a card that is due immediately", func(t *testing.T) {
		t.Parallel()
		before := time.Now().UTC()
		card, err := domain.NewCard("gato", "cat", "daily", domain.DifficultyEasy)
		after := time.Now().UTC()

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, card.ID)
		assert.Equal(t, "gato", card.Front)
		assert.Equal(t, "cat", card.Back)
		assert.Equal(t, "daily", card.DeckTag)
		assert.Equal(t, domain.DifficultyEasy, card.Difficulty)

		assert.Equal(t, domain.DefaultEaseFactor, card.EaseFactor)
		assert.Equal(t, 0, card.IntervalDays)
		assert.Equal(t, 0, card.Repetitions)
		assert.Equal(t, 0, card.Lapses)
		assert.False(t, card.Reviewed())

		assert.False(t, card.DueAt.Before(before))
		assert.False(t, card.DueAt.After(after))
	})

	t.Run("rejects invalid content", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name       string
			front      string
			back       string
			deckTag    string
			difficulty domain.Difficulty
			wantErr    error
		}{
			{
				name:       "empty front",
				front:      "",
				back:       "cat",
				deckTag:    "daily",
				difficulty: domain.DifficultyEasy,
				wantErr:    domain.ErrCardFrontEmpty,
			},
			{
				name:       "empty back",
				front:      "gato",
				back:       "",
				deckTag:    "daily",
				difficulty: domain.DifficultyEasy,
				wantErr:    domain.ErrCardBackEmpty,
			},
			{
				name:       "empty deck tag",
				front:      "gato",
				back:       "cat",
				deckTag:    "",
				difficulty: domain.DifficultyEasy,
				wantErr:    domain.ErrCardDeckTagEmpty,
			},
			{
				name:       "unknown difficulty",
				front:      "gato",
				back:       "cat",
				deckTag:    "daily",
				difficulty: "impossible",
				wantErr:    domain.ErrInvalidDifficulty,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				card, err := domain.NewCard(tc.front, tc.back, tc.deckTag, tc.difficulty)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, card)
			})
		}
	})
}

func TestCardValidateSchedulingInvariants(t *testing.T) {
	t.Parallel()

	valid := func(t *testing.T) *domain.VocabularyCard {
		t.Helper()
		card, err := domain.NewCard("gato", "cat", "daily", domain.DifficultyMedium)
		require.NoError(t, err)
		return card
	}

	testCases := []struct {
		name    string
		mutate  func(*domain.VocabularyCard)
		wantErr error
	}{
		{
			name:    "ease factor below floor",
			mutate:  func(c *domain.VocabularyCard) { c.EaseFactor = 1.29 },
			wantErr: domain.ErrInvalidEaseFactor,
		},
		{
			name:    "ease factor exactly at floor is valid",
			mutate:  func(c *domain.VocabularyCard) { c.EaseFactor = domain.MinEaseFactor },
			wantErr: nil,
		},
		{
			name:    "negative interval",
			mutate:  func(c *domain.VocabularyCard) { c.IntervalDays = -1 },
			wantErr: domain.ErrInvalidInterval,
		},
		{
			name: "zero interval with repetitions",
			mutate: func(c *domain.VocabularyCard) {
				c.Repetitions = 1
				c.IntervalDays = 0
			},
			wantErr: domain.ErrInvalidInterval,
		},
		{
			name:    "negative repetitions",
			mutate:  func(c *domain.VocabularyCard) { c.Repetitions = -1 },
			wantErr: domain.ErrInvalidRepetitions,
		},
		{
			name:    "negative lapses",
			mutate:  func(c *domain.VocabularyCard) { c.Lapses = -1 },
			wantErr: domain.ErrInvalidLapses,
		},
		{
			name:    "nil id",
			mutate:  func(c *domain.VocabularyCard) { c.ID = uuid.Nil },
			wantErr: domain.ErrCardIDEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card := valid(t)
			tc.mutate(card)

			err := card.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestCardClone(t *testing.T) {
	t.Parallel()
	card, err := domain.NewCard("gato", "cat", "daily", domain.DifficultyEasy)
	require.NoError(t, err)

	clone := card.Clone()
	require.Equal(t, card, clone)

	clone.Front = "perro"
	clone.Repetitions = 7
	assert.Equal(t, "gato", card.Front)
	assert.Equal(t, 0, card.Repetitions)
}

func TestCardUpdateContent(t *testing.T) {
	t.Parallel()

	t.Run("replaces content and keeps scheduling state", func(t *testing.T) {
		t.Parallel()
		card, err := domain.NewCard("gato", "cat", "daily", domain.DifficultyEasy)
		require.NoError(t, err)
		card.Repetitions = 3
		card.IntervalDays = 12

		err = card.UpdateContent("gata", "cat (female)", "GAH-tah", "La gata duerme.")
		require.NoError(t, err)

		assert.Equal(t, "gata", card.Front)
		assert.Equal(t, "cat (female)", card.Back)
		assert.Equal(t, "GAH-tah", card.Pronunciation)
		assert.Equal(t, "La gata duerme.", card.Example)
		assert.Equal(t, 3, card.Repetitions)
		assert.Equal(t, 12, card.IntervalDays)
	})

	t.Run("rejects empty content and leaves the card unchanged", func(t *testing.T) {
		t.Parallel()
		card, err := domain.NewCard("gato", "cat", "daily", domain.DifficultyEasy)
		require.NoError(t, err)

		err = card.UpdateContent("", "cat", "", "")
		assert.ErrorIs(t, err, domain.ErrCardFrontEmpty)
		assert.Equal(t, "gato", card.Front)
		assert.Equal(t, "cat", card.Back)
	})
}
