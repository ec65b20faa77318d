package domain

import "errors"

// ErrInvalidReviewOutcome is returned when a review outcome is not one of
// the four named levels.
var ErrInvalidReviewOutcome = errors.New("invalid review outcome")

// ErrInvalidGrade is returned when a numeric grade is outside the 0-5 range
// the algorithm is defined over. The scheduler rejects the review before any
// state is computed.
var ErrInvalidGrade = errors.New("grade must be between 0 and 5")

// ReviewOutcome is one of the four recall levels exposed to the UI.
// Both input adapters (swipe gesture and grade buttons) funnel into this
// type, so the outcome-to-grade mapping lives in exactly one place.
type ReviewOutcome string

// Possible review outcome values
const (
	ReviewOutcomeAgain ReviewOutcome = "again"
	ReviewOutcomeHard  ReviewOutcome = "hard"
	ReviewOutcomeGood  ReviewOutcome = "good"
	ReviewOutcomeEasy  ReviewOutcome = "easy"
)

// Valid reports whether the outcome is one of the four named levels.
func (o ReviewOutcome) Valid() bool {
	switch o {
	case ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy:
		return true
	default:
		return false
	}
}

// Grade is a recall quality on the 0-5 SM-2 scale. Grades below 3 are
// lapses; grades of 3 and above are successes.
type Grade int

// Named grade values on the 0-5 scale.
const (
	GradeBlackout    Grade = 0 // complete failure to recall
	GradeIncorrect   Grade = 1 // wrong, but the answer was recognized
	GradeAlmost      Grade = 2 // wrong, but felt close
	GradeDifficult   Grade = 3 // correct with significant effort
	GradeHesitant    Grade = 4 // correct after some hesitation
	GradePerfect     Grade = 5 // perfect recall
	successThreshold       = GradeDifficult
)

// Valid reports whether the grade is within the defined 0-5 range.
func (g Grade) Valid() bool {
	return g >= GradeBlackout && g <= GradePerfect
}

// Success reports whether the grade counts as a successful recall.
// Grades below 3 are lapses and reset the card's repetition streak.
func (g Grade) Success() bool {
	return g >= successThreshold
}

// Grade maps the UI-level outcome onto the numeric scale used by the
// scheduling algorithm: Again=0, Hard=3, Good=4, Easy=5.
// Returns ErrInvalidReviewOutcome for an unrecognized outcome.
func (o ReviewOutcome) Grade() (Grade, error) {
	switch o {
	case ReviewOutcomeAgain:
		return GradeBlackout, nil
	case ReviewOutcomeHard:
		return GradeDifficult, nil
	case ReviewOutcomeGood:
		return GradeHesitant, nil
	case ReviewOutcomeEasy:
		return GradePerfect, nil
	default:
		return 0, ErrInvalidReviewOutcome
	}
}
