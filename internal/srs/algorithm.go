package srs

import (
	"math"
	"time"

	"github.com/parlo-app/srs-engine/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease adjustment for a grade:
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// The ease factor is adjusted on every review, including lapses, and is
// clamped to params.MinEaseFactor. There is no upper bound.
func calculateNewEaseFactor(currentEF float64, grade domain.Grade, params *Params) float64 {
	q := float64(grade)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the interval in days until the card's next
// review, given the repetition count after this review and the card's ease
// factor as it stood before this review's adjustment.
//
// A lapse (repetitions reset to 0) always yields params.LapseInterval.
// Otherwise the first repetition yields params.FirstInterval, the second
// params.SecondInterval, and later repetitions grow the previous interval by
// the ease factor, rounded to the nearest whole day. The result is never
// below 1 day for a reviewed card.
func calculateNewInterval(
	currentInterval int,
	newRepetitions int,
	easeFactor float64,
	params *Params,
) int {
	switch {
	case newRepetitions == 0:
		return params.LapseInterval
	case newRepetitions == 1:
		return params.FirstInterval
	case newRepetitions == 2:
		return params.SecondInterval
	default:
		interval := int(math.Round(float64(currentInterval) * easeFactor))
		if interval < 1 {
			interval = 1
		}
		return interval
	}
}

// calculateNextCard computes the card's full post-review scheduling state.
// It follows the immutable update pattern: the input card is never modified,
// and the returned card is a fresh copy with the new state. Persistence is
// the caller's responsibility.
//
// The growth interval uses the ease factor from before this review; the
// adjusted ease factor takes effect from the next review on.
func calculateNextCard(
	card *domain.VocabularyCard,
	grade domain.Grade,
	now time.Time,
	params *Params,
) *domain.VocabularyCard {
	next := card.Clone()

	next.EaseFactor = calculateNewEaseFactor(card.EaseFactor, grade, params)

	if grade.Success() {
		next.Repetitions = card.Repetitions + 1
	} else {
		next.Repetitions = 0
		next.Lapses = card.Lapses + 1
	}

	next.IntervalDays = calculateNewInterval(
		card.IntervalDays,
		next.Repetitions,
		card.EaseFactor,
		params,
	)

	next.DueAt = now.AddDate(0, 0, next.IntervalDays)
	next.LastReviewedAt = now
	next.UpdatedAt = now

	return next
}
