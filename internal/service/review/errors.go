package review

import "errors"

// Common error types for the review session
var (
	// ErrSessionComplete indicates the session's due snapshot is exhausted
	// and no further presentation or grading is possible.
	ErrSessionComplete = errors.New("review session is complete")

	// ErrProtocol indicates a session call out of sequence: grading before
	// revealing, or revealing twice without an intervening grade. The call
	// is rejected and the session state is unchanged; the caller must
	// re-synchronize its own UI state.
	ErrProtocol = errors.New("session protocol violation")

	// ErrNotPresenting indicates there is no current card to operate on.
	ErrNotPresenting = errors.New("no card is currently presented")
)
