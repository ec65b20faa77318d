package srs

import "github.com/parlo-app/srs-engine/internal/domain"

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// MinEaseFactor is the floor applied after every ease adjustment.
	// There is no ceiling.
	MinEaseFactor float64

	// FirstInterval is the interval in days after the first successful
	// review of a card.
	FirstInterval int

	// SecondInterval is the interval in days after the second consecutive
	// successful review.
	SecondInterval int

	// LapseInterval is the interval in days a card is reset to after a
	// failed review.
	LapseInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero fields keep their defaults.
type ParamsConfig struct {
	MinEaseFactor  float64
	FirstInterval  int
	SecondInterval int
	LapseInterval  int
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// values: ease floor 1.3, first interval 1 day, second interval 6 days,
// lapse reset to 1 day.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  domain.MinEaseFactor,
		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}

	return params
}
