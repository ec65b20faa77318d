package srs

import (
	"errors"
	"time"

	"github.com/parlo-app/srs-engine/internal/domain"
)

// Common errors
var (
	ErrNilCard     = errors.New("card cannot be nil")
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Scheduler defines the interface for spaced repetition scheduling
// operations. Implementations are pure: they never persist anything and
// never modify the card they are given.
type Scheduler interface {
	// Update computes the card's new scheduling state for a graded review.
	// It returns domain.ErrInvalidGrade if the grade is outside the 0-5
	// range, without computing any state.
	Update(
		card *domain.VocabularyCard,
		grade domain.Grade,
		now time.Time,
	) (*domain.VocabularyCard, error)

	// Postpone pushes the card's due time forward by a number of days
	// without recording a review.
	Postpone(
		card *domain.VocabularyCard,
		days int,
		now time.Time,
	) (*domain.VocabularyCard, error)
}

// defaultScheduler is the standard implementation of the Scheduler interface.
type defaultScheduler struct {
	params *Params
}

// NewScheduler creates a new Scheduler with default parameters.
func NewScheduler() Scheduler {
	return &defaultScheduler{
		params: NewDefaultParams(),
	}
}

// NewSchedulerWithParams creates a new Scheduler with custom parameters.
func NewSchedulerWithParams(params *Params) Scheduler {
	return &defaultScheduler{
		params: params,
	}
}

// Update implements Scheduler.Update.
func (s *defaultScheduler) Update(
	card *domain.VocabularyCard,
	grade domain.Grade,
	now time.Time,
) (*domain.VocabularyCard, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !grade.Valid() {
		return nil, domain.ErrInvalidGrade
	}

	return calculateNextCard(card, grade, now, s.params), nil
}

// Postpone implements Scheduler.Postpone. The card's ease factor, interval
// and repetition streak are untouched; only the due time moves.
func (s *defaultScheduler) Postpone(
	card *domain.VocabularyCard,
	days int,
	now time.Time,
) (*domain.VocabularyCard, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := card.Clone()
	next.DueAt = card.DueAt.AddDate(0, 0, days)
	next.UpdatedAt = now

	return next, nil
}
