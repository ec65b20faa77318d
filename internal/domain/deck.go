package domain

// DeckFilter is a predicate over card tags describing a named logical deck.
// Decks are computed on demand from the card store and are never persisted.
// The zero value matches every card ("all").
type DeckFilter struct {
	// Tag, when non-empty, restricts the deck to cards with this source
	// deck tag.
	Tag string

	// Difficulty, when non-empty, restricts the deck to cards with this
	// difficulty.
	Difficulty Difficulty
}

// DeckAll matches every card.
var DeckAll = DeckFilter{}

// ByTag returns a filter selecting cards from the named source deck.
func ByTag(tag string) DeckFilter {
	return DeckFilter{Tag: tag}
}

// ByDifficulty returns a filter selecting cards of the given difficulty.
func ByDifficulty(d Difficulty) DeckFilter {
	return DeckFilter{Difficulty: d}
}

// Matches reports whether the card belongs to the deck.
func (f DeckFilter) Matches(card *VocabularyCard) bool {
	if f.Tag != "" && card.DeckTag != f.Tag {
		return false
	}
	if f.Difficulty != "" && card.Difficulty != f.Difficulty {
		return false
	}
	return true
}
