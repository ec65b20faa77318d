package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parlo-app/srs-engine/internal/api"
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/generation"
	"github.com/parlo-app/srs-engine/internal/service/review"
	"github.com/parlo-app/srs-engine/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"card not found", store.ErrCardNotFound, http.StatusNotFound},
		{"session not found", api.ErrSessionNotFound, http.StatusNotFound},
		{"protocol violation", review.ErrProtocol, http.StatusConflict},
		{
			"wrapped protocol violation",
			fmt.Errorf("reveal called in state %q: %w", "complete", review.ErrProtocol),
			http.StatusConflict,
		},
		{"session complete", review.ErrSessionComplete, http.StatusConflict},
		{"invalid grade", domain.ErrInvalidGrade, http.StatusBadRequest},
		{"invalid outcome", domain.ErrInvalidReviewOutcome, http.StatusBadRequest},
		{"invalid card", store.ErrInvalidCard, http.StatusBadRequest},
		{"no topics", generation.ErrNoTopics, http.StatusBadRequest},
		{"content blocked", generation.ErrContentBlocked, http.StatusBadGateway},
		{"transient generation failure", generation.ErrTransientFailure, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessageDoesNotLeakInternals(t *testing.T) {
	t.Parallel()

	err := store.NewStoreError("card", "upsert",
		"write failed", errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	msg := api.GetSafeErrorMessage(err)
	assert.NotContains(t, msg, "10.0.0.3")
	assert.NotContains(t, msg, "connection refused")
}
