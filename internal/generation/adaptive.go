package generation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/store"
)

// DefaultCardsPerTopic is how many candidates are requested per weak topic
// when no override is given.
const DefaultCardsPerTopic = 5

// AdaptiveGenerator synthesizes new cards biased toward the learner's
// weakest topics. It delegates content production to a Generator and owns
// the engine-side responsibilities: ranking topics by observed performance,
// deduplicating candidates against the store by content equality, and
// returning new cards in the default scheduling state (due immediately).
type AdaptiveGenerator struct {
	cards         store.CardStore
	generator     Generator
	cardsPerTopic int
	logger        *slog.Logger
}

// NewAdaptiveGenerator creates an adaptive generator over the given store
// and content generator. If cardsPerTopic is not positive,
// DefaultCardsPerTopic is used. If logger is nil, a default logger will be
// used.
func NewAdaptiveGenerator(
	cards store.CardStore,
	generator Generator,
	cardsPerTopic int,
	logger *slog.Logger,
) *AdaptiveGenerator {
	if cards == nil {
		panic("cards store cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}

	if cardsPerTopic <= 0 {
		cardsPerTopic = DefaultCardsPerTopic
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AdaptiveGenerator{
		cards:         cards,
		generator:     generator,
		cardsPerTopic: cardsPerTopic,
		logger:        logger.With(slog.String("component", "adaptive_generator")),
	}
}

// topicStats aggregates review performance for one deck tag.
type topicStats struct {
	tag     string
	reviews int
	lapses  int
	easeSum float64
	cards   int
}

func (t *topicStats) lapseRate() float64 {
	if t.reviews == 0 {
		return 0
	}
	return float64(t.lapses) / float64(t.reviews)
}

func (t *topicStats) avgEase() float64 {
	if t.cards == 0 {
		return domain.DefaultEaseFactor
	}
	return t.easeSum / float64(t.cards)
}

// WeakTopics ranks the deck tags by how poorly their cards are being
// recalled and returns up to limit of the worst. Topics with a higher lapse
// rate rank worse; ties are broken by lower average ease factor. Tags whose
// cards have never been reviewed are excluded, since there is no performance
// signal for them yet.
func (g *AdaptiveGenerator) WeakTopics(ctx context.Context, limit int) ([]string, error) {
	all, err := g.cards.All(ctx)
	if err != nil {
		return nil, err
	}

	byTag := make(map[string]*topicStats)
	var tags []string
	for _, card := range all {
		s, ok := byTag[card.DeckTag]
		if !ok {
			s = &topicStats{tag: card.DeckTag}
			byTag[card.DeckTag] = s
			tags = append(tags, card.DeckTag)
		}
		s.cards++
		s.easeSum += card.EaseFactor
		s.lapses += card.Lapses
		if card.Reviewed() {
			s.reviews += card.Repetitions + card.Lapses
		}
	}

	var ranked []*topicStats
	for _, tag := range tags {
		if s := byTag[tag]; s.reviews > 0 {
			ranked = append(ranked, s)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].lapseRate() != ranked[j].lapseRate() {
			return ranked[i].lapseRate() > ranked[j].lapseRate()
		}
		return ranked[i].avgEase() < ranked[j].avgEase()
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	weak := make([]string, 0, len(ranked))
	for _, s := range ranked {
		weak = append(weak, s.tag)
	}

	return weak, nil
}

// Generate produces new cards for the given topics, excluding any candidate
// whose front/back pair already exists in the store. Content equality is
// case- and whitespace-insensitive, so the same word pair is never generated
// twice under cosmetic variations. The returned cards carry the default
// scheduling state and have not been persisted; insertion is the caller's
// decision.
func (g *AdaptiveGenerator) Generate(
	ctx context.Context,
	topics []string,
) ([]*domain.VocabularyCard, error) {
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}

	existing, err := g.cards.All(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, card := range existing {
		seen[contentKey(card.Front, card.Back)] = struct{}{}
	}

	var generated []*domain.VocabularyCard
	for _, topic := range topics {
		candidates, err := g.generator.GenerateCards(ctx, topic, g.cardsPerTopic)
		if err != nil {
			return nil, fmt.Errorf("%w: topic %q: %w", ErrGenerationFailed, topic, err)
		}

		for _, candidate := range candidates {
			key := contentKey(candidate.Front, candidate.Back)
			if _, dup := seen[key]; dup {
				g.logger.Debug("skipping duplicate candidate",
					slog.String("topic", topic),
					slog.String("front", candidate.Front))
				continue
			}

			difficulty := candidate.Difficulty
			if !difficulty.Valid() {
				difficulty = domain.DifficultyMedium
			}

			card, err := domain.NewCard(candidate.Front, candidate.Back, topic, difficulty)
			if err != nil {
				g.logger.Warn("discarding invalid candidate",
					slog.String("topic", topic),
					slog.String("error", err.Error()))
				continue
			}
			card.Pronunciation = candidate.Pronunciation
			card.Example = candidate.Example

			seen[key] = struct{}{}
			generated = append(generated, card)
		}
	}

	g.logger.Debug("generated cards",
		slog.Int("topics", len(topics)),
		slog.Int("cards", len(generated)))

	return generated, nil
}

// contentKey normalizes a front/back pair for duplicate detection.
func contentKey(front, back string) string {
	normalize := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	return normalize(front) + "\x00" + normalize(back)
}
