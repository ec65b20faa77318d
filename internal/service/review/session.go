// Package review drives one bounded review sitting: it pulls from the due
// queue, presents one card at a time, and feeds grades through the scheduler
// into the card store.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/platform/logger"
	"github.com/parlo-app/srs-engine/internal/queue"
	"github.com/parlo-app/srs-engine/internal/srs"
	"github.com/parlo-app/srs-engine/internal/store"
)

// State is the review session's position in its lifecycle.
type State string

// Session states. A session moves Idle → Presenting → Revealed →
// Presenting… and terminates in Complete when the due snapshot is exhausted.
const (
	StateIdle       State = "idle"
	StatePresenting State = "presenting"
	StateRevealed   State = "revealed"
	StateComplete   State = "complete"
)

// Summary holds the session's running statistics. It is a read-only output
// for a results screen and is discarded with the session, never persisted.
type Summary struct {
	Reviewed int     `json:"reviewed"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Service creates review sessions. All collaborators are passed in
// explicitly; there is no ambient shared state.
type Service struct {
	cards     store.CardStore
	due       *queue.DueQueue
	scheduler srs.Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a review session service.
// If logger is nil, a default logger will be used.
func NewService(
	cards store.CardStore,
	due *queue.DueQueue,
	scheduler srs.Scheduler,
	logger *slog.Logger,
) *Service {
	if cards == nil {
		panic("cards store cannot be nil")
	}
	if due == nil {
		panic("due queue cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cards:     cards,
		due:       due,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "review_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceWithClock creates a review session service with an injected
// clock, used by tests to make due computations deterministic.
func NewServiceWithClock(
	cards store.CardStore,
	due *queue.DueQueue,
	scheduler srs.Scheduler,
	logger *slog.Logger,
	now func() time.Time,
) *Service {
	svc := NewService(cards, due, scheduler, logger)
	if now != nil {
		svc.now = now
	}
	return svc
}

// Session is one sitting over a snapshot of due card ids. It is ephemeral
// and driven serially by a single UI event loop; abandoning it at any state
// loses only the running statistics, never already-persisted grades.
type Session struct {
	svc    *Service
	logger *slog.Logger

	state    State
	order    []uuid.UUID // due snapshot, fixed at start
	cursor   int
	current  *domain.VocabularyCard
	reviewed int
	correct  int
}

// Start snapshots the due queue for the deck and returns a new session in
// StatePresenting, or directly in StateComplete if nothing is due.
func (s *Service) Start(ctx context.Context, filter domain.DeckFilter) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	due, err := s.due.DueNow(ctx, s.now(), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot due queue: %w", err)
	}

	session := &Session{
		svc:    s,
		logger: log,
		state:  StateIdle,
		order:  make([]uuid.UUID, 0, len(due)),
	}
	for _, card := range due {
		session.order = append(session.order, card.ID)
	}

	if len(session.order) == 0 {
		session.state = StateComplete
		log.Debug("started review session with empty due queue")
		return session, nil
	}

	if err := session.present(ctx); err != nil {
		return nil, err
	}

	log.Debug("started review session",
		slog.Int("due", len(session.order)),
		slog.String("deck_tag", filter.Tag))

	return session, nil
}

// present loads the card at the cursor and enters StatePresenting, or
// StateComplete when the snapshot is exhausted.
func (s *Session) present(ctx context.Context) error {
	for s.cursor < len(s.order) {
		card, err := s.svc.cards.Get(ctx, s.order[s.cursor])
		if err != nil {
			if store.IsNotFoundError(err) {
				// Card removed since the snapshot was taken; skip it.
				s.logger.Debug("skipping card removed mid-session",
					slog.String("card_id", s.order[s.cursor].String()))
				s.cursor++
				continue
			}
			return fmt.Errorf("failed to load card: %w", err)
		}

		s.current = card
		s.state = StatePresenting
		return nil
	}

	s.current = nil
	s.state = StateComplete
	return nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Current returns the card being presented or revealed.
// Returns ErrNotPresenting in any other state.
func (s *Session) Current() (*domain.VocabularyCard, error) {
	if s.state != StatePresenting && s.state != StateRevealed {
		return nil, ErrNotPresenting
	}
	return s.current, nil
}

// Reveal discloses the back face of the current card. It is valid only from
// StatePresenting and has no scheduling side effect.
// Returns ErrProtocol (state unchanged) from any other state.
func (s *Session) Reveal() error {
	if s.state != StatePresenting {
		return fmt.Errorf("%w: reveal called in state %q", ErrProtocol, s.state)
	}

	s.state = StateRevealed
	return nil
}

// Grade records the learner's recall of the current card. It is valid only
// from StateRevealed: the scheduler computes the new state, the store
// persists it, the counters advance, and the session moves to the next card
// or to StateComplete.
//
// A persistence failure is returned as-is and leaves the session in
// StateRevealed with the counters untouched, so the UI does not silently
// advance past an ungraded card. Grading is atomic per card; grades already
// persisted in this session are unaffected by later failures or abandonment.
func (s *Session) Grade(ctx context.Context, outcome domain.ReviewOutcome) error {
	if s.state != StateRevealed {
		return fmt.Errorf("%w: grade called in state %q", ErrProtocol, s.state)
	}

	grade, err := outcome.Grade()
	if err != nil {
		return err
	}

	now := s.svc.now()
	updated, err := s.svc.scheduler.Update(s.current, grade, now)
	if err != nil {
		return fmt.Errorf("failed to compute next review: %w", err)
	}

	if err := s.svc.cards.Upsert(ctx, updated); err != nil {
		s.logger.Error("failed to persist graded card",
			slog.String("card_id", s.current.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist graded card: %w", err)
	}

	s.reviewed++
	if grade.Success() {
		s.correct++
	}

	s.logger.Debug("graded card",
		slog.String("card_id", updated.ID.String()),
		slog.String("outcome", string(outcome)),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Time("due_at", updated.DueAt))

	s.cursor++
	return s.present(ctx)
}

// Remaining returns how many cards of the snapshot, including the current
// one, have not been graded yet.
func (s *Session) Remaining() int {
	return len(s.order) - s.cursor
}

// Summary returns the session's running statistics.
func (s *Session) Summary() Summary {
	summary := Summary{
		Reviewed: s.reviewed,
		Correct:  s.correct,
	}
	if s.reviewed > 0 {
		summary.Accuracy = float64(s.correct) / float64(s.reviewed)
	}
	return summary
}
