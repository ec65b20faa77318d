package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MinEaseFactor is the floor for a card's ease factor. The scheduler never
// lets the ease factor drop below this value, which prevents runaway short
// intervals for cards that are repeatedly failed.
const MinEaseFactor = 1.3

// DefaultEaseFactor is the ease factor assigned to a brand-new card.
const DefaultEaseFactor = 2.5

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front text cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back text cannot be empty")

	// ErrCardDeckTagEmpty is returned when a card has no source deck tag.
	ErrCardDeckTagEmpty = errors.New("card deck tag cannot be empty")

	// ErrInvalidDifficulty is returned when a card's difficulty is not one of
	// the enumerated values.
	ErrInvalidDifficulty = errors.New("invalid card difficulty")

	// ErrInvalidEaseFactor is returned when a card's ease factor is below the
	// algorithm floor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidInterval is returned when a card's interval is negative, or
	// zero for a card that has already been reviewed successfully.
	ErrInvalidInterval = errors.New("invalid review interval")

	// ErrInvalidRepetitions is returned when a card's repetition count is negative.
	ErrInvalidRepetitions = errors.New("repetitions must be greater than or equal to 0")

	// ErrInvalidLapses is returned when a card's lapse count is negative.
	ErrInvalidLapses = errors.New("lapses must be greater than or equal to 0")
)

// Difficulty classifies how hard a card's content is, independent of its
// scheduling state.
type Difficulty string

// Enumerated difficulty values.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether the difficulty is one of the enumerated values.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// VocabularyCard is a single vocabulary item together with its spaced
// repetition scheduling state. The card store exclusively owns all instances;
// the scheduler produces new values rather than mutating cards in place.
type VocabularyCard struct {
	ID uuid.UUID `json:"id" db:"id"`

	// Content fields. Pronunciation and Example are optional.
	Front         string `json:"front"                   db:"front"`
	Back          string `json:"back"                    db:"back"`
	Pronunciation string `json:"pronunciation,omitempty" db:"pronunciation"`
	Example       string `json:"example,omitempty"       db:"example"`

	// Classification. DeckTag names the card's source deck or topic
	// (e.g. "daily", "song", "travel") and is the unit of deck filtering
	// and weak-topic aggregation.
	DeckTag    string     `json:"deck_tag"   db:"deck_tag"`
	Difficulty Difficulty `json:"difficulty" db:"difficulty"`

	// Scheduling state, mutated exclusively through the scheduler.
	EaseFactor     float64   `json:"ease_factor"   db:"ease_factor"`
	IntervalDays   int       `json:"interval_days" db:"interval_days"`
	Repetitions    int       `json:"repetitions"   db:"repetitions"` // consecutive successful reviews
	Lapses         int       `json:"lapses"        db:"lapses"`      // count of failed reviews
	DueAt          time.Time `json:"due_at"        db:"due_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"` // zero value means never reviewed

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewCard creates a new VocabularyCard with the given content and
// classification. It generates a new UUID for the card ID and initializes the
// scheduling state so the card is due immediately (repetitions=0,
// intervalDays=0, easeFactor=2.5, dueAt=now).
// Returns an error if validation fails.
func NewCard(front, back, deckTag string, difficulty Difficulty) (*VocabularyCard, error) {
	now := time.Now().UTC()
	card := &VocabularyCard{
		ID:           uuid.New(),
		Front:        front,
		Back:         back,
		DeckTag:      deckTag,
		Difficulty:   difficulty,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
		Lapses:       0,
		DueAt:        now, // available for review immediately
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the VocabularyCard has valid data, including the
// scheduling invariants: easeFactor >= 1.3 always, intervalDays >= 0, and
// intervalDays >= 1 once the card has at least one successful repetition.
// Returns an error if any field fails validation.
func (c *VocabularyCard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if c.DeckTag == "" {
		return ErrCardDeckTagEmpty
	}

	if !c.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if c.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	if c.Repetitions >= 1 && c.IntervalDays < 1 {
		return ErrInvalidInterval
	}

	if c.Lapses < 0 {
		return ErrInvalidLapses
	}

	return nil
}

// Reviewed reports whether the card has ever been graded.
func (c *VocabularyCard) Reviewed() bool {
	return !c.LastReviewedAt.IsZero()
}

// Clone returns a deep copy of the card. The scheduler operates on copies so
// that callers decide whether a computed update is persisted.
func (c *VocabularyCard) Clone() *VocabularyCard {
	clone := *c
	return &clone
}

// UpdateContent replaces the card's content fields and refreshes the
// UpdatedAt timestamp. Scheduling state is untouched.
// Returns an error if the new content is invalid.
func (c *VocabularyCard) UpdateContent(front, back, pronunciation, example string) error {
	origFront, origBack := c.Front, c.Back
	c.Front = front
	c.Back = back

	if err := c.Validate(); err != nil {
		c.Front, c.Back = origFront, origBack
		return err
	}

	c.Pronunciation = pronunciation
	c.Example = example
	c.UpdatedAt = time.Now().UTC()
	return nil
}
