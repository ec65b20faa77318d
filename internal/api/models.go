package api

import (
	"time"

	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/service/review"
)

// CardResponse represents the full response data for a card, including its
// scheduling state.
type CardResponse struct {
	ID             string     `json:"id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	Pronunciation  string     `json:"pronunciation,omitempty"`
	Example        string     `json:"example,omitempty"`
	DeckTag        string     `json:"deck_tag"`
	Difficulty     string     `json:"difficulty"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	Lapses         int        `json:"lapses"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func cardToResponse(card *domain.VocabularyCard) CardResponse {
	resp := CardResponse{
		ID:            card.ID.String(),
		Front:         card.Front,
		Back:          card.Back,
		Pronunciation: card.Pronunciation,
		Example:       card.Example,
		DeckTag:       card.DeckTag,
		Difficulty:    string(card.Difficulty),
		EaseFactor:    card.EaseFactor,
		IntervalDays:  card.IntervalDays,
		Repetitions:   card.Repetitions,
		Lapses:        card.Lapses,
		DueAt:         card.DueAt,
		CreatedAt:     card.CreatedAt,
		UpdatedAt:     card.UpdatedAt,
	}
	if card.Reviewed() {
		t := card.LastReviewedAt
		resp.LastReviewedAt = &t
	}
	return resp
}

// PresentedCardResponse is the front face of a card as shown during a
// session before reveal. The back face is withheld until the reveal step.
type PresentedCardResponse struct {
	ID            string `json:"id"`
	Front         string `json:"front"`
	Pronunciation string `json:"pronunciation,omitempty"`
	DeckTag       string `json:"deck_tag"`
	Difficulty    string `json:"difficulty"`
}

func presentedCardToResponse(card *domain.VocabularyCard) PresentedCardResponse {
	return PresentedCardResponse{
		ID:            card.ID.String(),
		Front:         card.Front,
		Pronunciation: card.Pronunciation,
		DeckTag:       card.DeckTag,
		Difficulty:    string(card.Difficulty),
	}
}

// RevealedCardResponse is the full card content disclosed after reveal.
type RevealedCardResponse struct {
	PresentedCardResponse
	Back    string `json:"back"`
	Example string `json:"example,omitempty"`
}

func revealedCardToResponse(card *domain.VocabularyCard) RevealedCardResponse {
	return RevealedCardResponse{
		PresentedCardResponse: presentedCardToResponse(card),
		Back:                  card.Back,
		Example:               card.Example,
	}
}

// CreateCardRequest represents the request body for creating a card.
type CreateCardRequest struct {
	Front         string `json:"front"`
	Back          string `json:"back"`
	Pronunciation string `json:"pronunciation"`
	Example       string `json:"example"`
	DeckTag       string `json:"deck_tag"`
	Difficulty    string `json:"difficulty"`
}

// EditCardRequest represents the request body for editing a card's content.
type EditCardRequest struct {
	Front         string `json:"front"`
	Back          string `json:"back"`
	Pronunciation string `json:"pronunciation"`
	Example       string `json:"example"`
}

// PostponeCardRequest represents the request body for postponing a card.
type PostponeCardRequest struct {
	Days int `json:"days"`
}

// StartSessionRequest represents the request body for starting a review
// session. Both filters are optional; empty values match every card.
type StartSessionRequest struct {
	DeckTag    string `json:"deck_tag"`
	Difficulty string `json:"difficulty"`
}

// GradeRequest represents the request body for grading the revealed card.
type GradeRequest struct {
	Outcome string `json:"outcome"`
}

// SessionResponse represents a session's externally visible state. Card is
// the front face while presenting, or the full card once revealed; it is
// absent when the session is complete.
type SessionResponse struct {
	ID        string         `json:"id"`
	State     string         `json:"state"`
	Remaining int            `json:"remaining"`
	Card      any            `json:"card,omitempty"`
	Summary   review.Summary `json:"summary"`
}

// GenerateCardsRequest represents the request body for adaptive card
// generation. With no topics given, the weakest topics are targeted.
type GenerateCardsRequest struct {
	Topics     []string `json:"topics"`
	TopicLimit int      `json:"topic_limit"`
}

// GenerateCardsResponse lists the cards created by a generation request.
type GenerateCardsResponse struct {
	Cards []CardResponse `json:"cards"`
}

// DeckCountsResponse reports the totals for one deck.
type DeckCountsResponse struct {
	Tag   string `json:"tag,omitempty"`
	Total int    `json:"total"`
	Due   int    `json:"due"`
}
