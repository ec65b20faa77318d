package generation

import (
	"context"

	"github.com/parlo-app/srs-engine/internal/domain"
)

// CandidateCard is raw card content produced by a content generator, before
// deduplication and before any scheduling state is attached.
type CandidateCard struct {
	Front         string            `json:"front"`
	Back          string            `json:"back"`
	Pronunciation string            `json:"pronunciation,omitempty"`
	Example       string            `json:"example,omitempty"`
	Difficulty    domain.Difficulty `json:"difficulty"`
}

// Generator defines the interface for producing vocabulary card content for
// a topic. This interface is the boundary between the engine and external
// AI/LLM services; the engine decides which topics to target and which
// candidates to keep, the generator only produces content.
type Generator interface {
	// GenerateCards produces up to count candidate cards for the topic.
	// Returns an error if generation fails (see errors.go for the specific
	// kinds).
	GenerateCards(ctx context.Context, topic string, count int) ([]CandidateCard, error)
}
