package generation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/generation"
	"github.com/parlo-app/srs-engine/internal/platform/memory"
)

// stubGenerator returns canned candidates per topic.
type stubGenerator struct {
	byTopic map[string][]generation.CandidateCard
	err     error
	calls   []string
}

func (g *stubGenerator) GenerateCards(
	ctx context.Context,
	topic string,
	count int,
) ([]generation.CandidateCard, error) {
	g.calls = append(g.calls, topic)
	if g.err != nil {
		return nil, g.err
	}
	return g.byTopic[topic], nil
}

func seedReviewedCard(
	t *testing.T,
	s *memory.CardStore,
	front, tag string,
	repetitions, lapses int,
	ease float64,
) {
	t.Helper()
	card, err := domain.NewCard(front, front+" (en)", tag, domain.DifficultyMedium)
	require.NoError(t, err)
	card.Repetitions = repetitions
	card.Lapses = lapses
	card.EaseFactor = ease
	if repetitions > 0 {
		card.IntervalDays = 1
	}
	if repetitions > 0 || lapses > 0 {
		card.LastReviewedAt = time.Now().UTC()
	}
	require.NoError(t, s.Upsert(context.Background(), card))
}

func TestWeakTopics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ranks by lapse rate descending", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		// "song": 2 lapses out of 4 reviews. "daily": 1 lapse out of 5.
		// "travel": never reviewed, must be excluded.
		seedReviewedCard(t, s, "letra", "song", 2, 2, 2.0)
		seedReviewedCard(t, s, "gato", "daily", 4, 1, 2.4)
		seedReviewedCard(t, s, "aeropuerto", "travel", 0, 0, 2.5)

		g := generation.NewAdaptiveGenerator(s, &stubGenerator{}, 0, nil)

		weak, err := g.WeakTopics(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"song", "daily"}, weak)
	})

	t.Run("breaks lapse rate ties by lower average ease", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		// Both topics have one lapse in two reviews; "song" has the lower
		// ease and should rank as weaker.
		seedReviewedCard(t, s, "letra", "song", 1, 1, 1.5)
		seedReviewedCard(t, s, "gato", "daily", 1, 1, 2.3)

		g := generation.NewAdaptiveGenerator(s, &stubGenerator{}, 0, nil)

		weak, err := g.WeakTopics(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"song", "daily"}, weak)
	})

	t.Run("limit truncates the ranking", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		seedReviewedCard(t, s, "letra", "song", 1, 3, 1.6)
		seedReviewedCard(t, s, "gato", "daily", 3, 1, 2.2)
		seedReviewedCard(t, s, "aeropuerto", "travel", 4, 1, 2.4)

		g := generation.NewAdaptiveGenerator(s, &stubGenerator{}, 0, nil)

		weak, err := g.WeakTopics(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"song"}, weak)
	})

	t.Run("empty store yields no topics", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		g := generation.NewAdaptiveGenerator(s, &stubGenerator{}, 0, nil)

		weak, err := g.WeakTopics(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, weak)
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("new cards carry the default scheduling state", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		stub := &stubGenerator{byTopic: map[string][]generation.CandidateCard{
			"travel": {
				{Front: "aeropuerto", Back: "airport", Difficulty: domain.DifficultyMedium},
				{Front: "maleta", Back: "suitcase", Example: "La maleta pesa mucho."},
			},
		}}
		g := generation.NewAdaptiveGenerator(s, stub, 0, nil)

		cards, err := g.Generate(ctx, []string{"travel"})
		require.NoError(t, err)
		require.Len(t, cards, 2)

		for _, card := range cards {
			assert.Equal(t, "travel", card.DeckTag)
			assert.Equal(t, domain.DefaultEaseFactor, card.EaseFactor)
			assert.Equal(t, 0, card.Repetitions)
			assert.Equal(t, 0, card.IntervalDays)
			assert.False(t, card.Reviewed())
		}
		assert.Equal(t, "La maleta pesa mucho.", cards[1].Example)
	})

	t.Run("deduplicates against the store ignoring case and whitespace", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		existing, err := domain.NewCard("Aeropuerto", "Airport", "travel", domain.DifficultyMedium)
		require.NoError(t, err)
		require.NoError(t, s.Upsert(ctx, existing))

		stub := &stubGenerator{byTopic: map[string][]generation.CandidateCard{
			"travel": {
				{Front: "  aeropuerto ", Back: "airport"}, // duplicate of the stored card
				{Front: "maleta", Back: "suitcase"},
				{Front: "MALETA", Back: "Suitcase"}, // duplicate within the batch
			},
		}}
		g := generation.NewAdaptiveGenerator(s, stub, 0, nil)

		cards, err := g.Generate(ctx, []string{"travel"})
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "maleta", cards[0].Front)
	})

	t.Run("invalid candidate difficulty falls back to medium", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		stub := &stubGenerator{byTopic: map[string][]generation.CandidateCard{
			"travel": {{Front: "maleta", Back: "suitcase", Difficulty: "extreme"}},
		}}
		g := generation.NewAdaptiveGenerator(s, stub, 0, nil)

		cards, err := g.Generate(ctx, []string{"travel"})
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, domain.DifficultyMedium, cards[0].Difficulty)
	})

	t.Run("candidates without content are discarded", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		stub := &stubGenerator{byTopic: map[string][]generation.CandidateCard{
			"travel": {
				{Front: "", Back: "airport"},
				{Front: "maleta", Back: "suitcase"},
			},
		}}
		g := generation.NewAdaptiveGenerator(s, stub, 0, nil)

		cards, err := g.Generate(ctx, []string{"travel"})
		require.NoError(t, err)
		require.Len(t, cards, 1)
	})

	t.Run("no topics is an error", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		g := generation.NewAdaptiveGenerator(s, &stubGenerator{}, 0, nil)

		_, err := g.Generate(ctx, nil)
		assert.ErrorIs(t, err, generation.ErrNoTopics)
	})

	t.Run("generator failure is wrapped with the topic", func(t *testing.T) {
		t.Parallel()
		s := memory.NewCardStore(nil)
		stub := &stubGenerator{err: errors.New("model unavailable")}
		g := generation.NewAdaptiveGenerator(s, stub, 0, nil)

		_, err := g.Generate(ctx, []string{"travel"})
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
		assert.Contains(t, err.Error(), "travel")
	})
}
