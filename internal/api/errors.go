package api

import (
	"errors"
	"net/http"

	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/generation"
	"github.com/parlo-app/srs-engine/internal/service/review"
	"github.com/parlo-app/srs-engine/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case store.IsNotFoundError(err), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound

	// Caller sequencing bugs: the session state did not allow the call.
	case errors.Is(err, review.ErrProtocol),
		errors.Is(err, review.ErrSessionComplete),
		errors.Is(err, review.ErrNotPresenting):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrInvalidReviewOutcome),
		errors.Is(err, store.ErrInvalidCard),
		errors.Is(err, generation.ErrNoTopics):
		return http.StatusBadRequest

	// Upstream generator failures
	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case store.IsNotFoundError(err):
		return "The requested resource was not found"
	case errors.Is(err, ErrSessionNotFound):
		return "Review session not found"
	case errors.Is(err, review.ErrProtocol):
		return "Invalid session operation for the current state"
	case errors.Is(err, review.ErrSessionComplete):
		return "The review session is already complete"
	case errors.Is(err, review.ErrNotPresenting):
		return "No card is currently presented"
	case errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrInvalidReviewOutcome):
		return "Invalid review grade"
	case errors.Is(err, store.ErrInvalidCard):
		return "Invalid card data"
	case errors.Is(err, generation.ErrNoTopics):
		return "No topics available for card generation"
	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure):
		return "Card generation is temporarily unavailable"
	default:
		return "An unexpected error occurred"
	}
}
