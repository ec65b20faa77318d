package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresCardStore implements the store interfaces
var (
	_ store.CardStore     = (*PostgresCardStore)(nil)
	_ store.BatchUpserter = (*PostgresCardStore)(nil)
)

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// WithTx returns a new PostgresCardStore that runs its statements on the
// provided transaction. Use together with store.RunInTransaction when a
// review grade must be persisted atomically.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) *PostgresCardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

const cardColumns = `id, front, back, pronunciation, example, deck_tag, difficulty,
	ease_factor, interval_days, repetitions, lapses, due_at, last_reviewed_at,
	created_at, updated_at`

// scanCard reads one card row. last_reviewed_at is NULL for cards that have
// never been reviewed and maps to the domain zero time.
func scanCard(row interface{ Scan(dest ...any) error }) (*domain.VocabularyCard, error) {
	var (
		card           domain.VocabularyCard
		lastReviewedAt sql.NullTime
	)

	err := row.Scan(
		&card.ID,
		&card.Front,
		&card.Back,
		&card.Pronunciation,
		&card.Example,
		&card.DeckTag,
		&card.Difficulty,
		&card.EaseFactor,
		&card.IntervalDays,
		&card.Repetitions,
		&card.Lapses,
		&card.DueAt,
		&lastReviewedAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewedAt.Valid {
		card.LastReviewedAt = lastReviewedAt.Time.UTC()
	}
	card.DueAt = card.DueAt.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()

	return &card, nil
}

// Get implements store.CardStore.Get.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyCard, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, store.NewStoreError("card", "get", "query failed", err)
	}

	return card, nil
}

// Upsert implements store.CardStore.Upsert. The position sequence assigned
// on first insert is never rewritten, so insertion order survives updates.
func (s *PostgresCardStore) Upsert(ctx context.Context, card *domain.VocabularyCard) error {
	if card == nil {
		return fmt.Errorf("%w: nil card", store.ErrInvalidCard)
	}

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidCard, err)
	}

	query := `
		INSERT INTO cards (id, front, back, pronunciation, example, deck_tag, difficulty,
			ease_factor, interval_days, repetitions, lapses, due_at, last_reviewed_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			front = EXCLUDED.front,
			back = EXCLUDED.back,
			pronunciation = EXCLUDED.pronunciation,
			example = EXCLUDED.example,
			deck_tag = EXCLUDED.deck_tag,
			difficulty = EXCLUDED.difficulty,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			lapses = EXCLUDED.lapses,
			due_at = EXCLUDED.due_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = EXCLUDED.updated_at`

	var lastReviewedAt sql.NullTime
	if card.Reviewed() {
		lastReviewedAt = sql.NullTime{Time: card.LastReviewedAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.Front,
		card.Back,
		card.Pronunciation,
		card.Example,
		card.DeckTag,
		card.Difficulty,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.Lapses,
		card.DueAt.UTC(),
		lastReviewedAt,
		card.CreatedAt.UTC(),
		card.UpdatedAt.UTC(),
	)
	if err != nil {
		return store.NewStoreError("card", "upsert", "write failed", err)
	}

	return nil
}

// UpsertAll implements store.BatchUpserter. When the store is backed by a
// plain connection the batch runs in its own transaction; when it already
// runs on a transaction (see WithTx) the writes simply join it.
func (s *PostgresCardStore) UpsertAll(ctx context.Context, cards []*domain.VocabularyCard) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		for _, card := range cards {
			if err := s.Upsert(ctx, card); err != nil {
				return err
			}
		}
		return nil
	}

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.WithTx(tx)
		for _, card := range cards {
			if err := txStore.Upsert(ctx, card); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete implements store.CardStore.Delete.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("card", "delete", "exec failed", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return store.NewStoreError("card", "delete", "rows affected unavailable", err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

// All implements store.CardStore.All.
func (s *PostgresCardStore) All(ctx context.Context) ([]*domain.VocabularyCard, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY position`
	return s.selectCards(ctx, query)
}

// ByDeckTag implements store.CardStore.ByDeckTag.
func (s *PostgresCardStore) ByDeckTag(
	ctx context.Context,
	tag string,
) ([]*domain.VocabularyCard, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE deck_tag = $1 ORDER BY position`
	return s.selectCards(ctx, query, tag)
}

func (s *PostgresCardStore) selectCards(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.VocabularyCard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("card", "select", "query failed", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var cards []*domain.VocabularyCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", "select", "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "select", "iteration failed", err)
	}

	return cards, nil
}
