// Package sqlite provides a SQLite-backed implementation of the store
// interfaces for single-user local deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/store"
)

// schema is applied on open. The position column records insertion order;
// it is assigned once on first insert and never changed by updates, which
// keeps due-queue tie-breaking stable across runs.
const schema = `
CREATE TABLE IF NOT EXISTS cards (
	position         INTEGER PRIMARY KEY AUTOINCREMENT,
	id               TEXT NOT NULL UNIQUE,
	front            TEXT NOT NULL,
	back             TEXT NOT NULL,
	pronunciation    TEXT NOT NULL DEFAULT '',
	example          TEXT NOT NULL DEFAULT '',
	deck_tag         TEXT NOT NULL,
	difficulty       TEXT NOT NULL,
	ease_factor      REAL NOT NULL,
	interval_days    INTEGER NOT NULL,
	repetitions      INTEGER NOT NULL,
	lapses           INTEGER NOT NULL,
	due_at           TIMESTAMP NOT NULL,
	last_reviewed_at TIMESTAMP,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_due_at ON cards(due_at);
CREATE INDEX IF NOT EXISTS idx_cards_deck_tag ON cards(deck_tag);
`

// Open opens (creating if necessary) the SQLite database at path and applies
// the schema.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	return db, nil
}

// cardRow mirrors the cards table. last_reviewed_at is nullable: a NULL
// means the card has never been reviewed, represented in the domain as the
// zero time.
type cardRow struct {
	ID             string       `db:"id"`
	Front          string       `db:"front"`
	Back           string       `db:"back"`
	Pronunciation  string       `db:"pronunciation"`
	Example        string       `db:"example"`
	DeckTag        string       `db:"deck_tag"`
	Difficulty     string       `db:"difficulty"`
	EaseFactor     float64      `db:"ease_factor"`
	IntervalDays   int          `db:"interval_days"`
	Repetitions    int          `db:"repetitions"`
	Lapses         int          `db:"lapses"`
	DueAt          time.Time    `db:"due_at"`
	LastReviewedAt sql.NullTime `db:"last_reviewed_at"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (r *cardRow) toDomain() (*domain.VocabularyCard, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse card ID %q: %w", r.ID, err)
	}

	card := &domain.VocabularyCard{
		ID:            id,
		Front:         r.Front,
		Back:          r.Back,
		Pronunciation: r.Pronunciation,
		Example:       r.Example,
		DeckTag:       r.DeckTag,
		Difficulty:    domain.Difficulty(r.Difficulty),
		EaseFactor:    r.EaseFactor,
		IntervalDays:  r.IntervalDays,
		Repetitions:   r.Repetitions,
		Lapses:        r.Lapses,
		DueAt:         r.DueAt.UTC(),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.LastReviewedAt.Valid {
		card.LastReviewedAt = r.LastReviewedAt.Time.UTC()
	}

	return card, nil
}

func rowFromDomain(card *domain.VocabularyCard) *cardRow {
	row := &cardRow{
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
		DueAt:         card.DueAt.UTC(),
		CreatedAt:     card.CreatedAt.UTC(),
		UpdatedAt:     card.UpdatedAt.UTC(),
	}
	if card.Reviewed() {
		row.LastReviewedAt = sql.NullTime{Time: card.LastReviewedAt.UTC(), Valid: true}
	}

	return row
}

// CardStore implements store.CardStore on top of a SQLite database.
type CardStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Ensure CardStore implements the store interfaces
var (
	_ store.CardStore     = (*CardStore)(nil)
	_ store.BatchUpserter = (*CardStore)(nil)
)

// NewCardStore creates a new SQLite implementation of the CardStore
// interface. The database should already have the schema applied (see Open).
// If logger is nil, a default logger will be used.
func NewCardStore(db *sqlx.DB, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_card_store")),
	}
}

const selectColumns = `id, front, back, pronunciation, example, deck_tag, difficulty,
	ease_factor, interval_days, repetitions, lapses, due_at, last_reviewed_at,
	created_at, updated_at`

const upsertQuery = `
	INSERT INTO cards (id, front, back, pronunciation, example, deck_tag, difficulty,
		ease_factor, interval_days, repetitions, lapses, due_at, last_reviewed_at,
		created_at, updated_at)
	VALUES (:id, :front, :back, :pronunciation, :example, :deck_tag, :difficulty,
		:ease_factor, :interval_days, :repetitions, :lapses, :due_at, :last_reviewed_at,
		:created_at, :updated_at)
	ON CONFLICT(id) DO UPDATE SET
		front = excluded.front,
		back = excluded.back,
		pronunciation = excluded.pronunciation,
		example = excluded.example,
		deck_tag = excluded.deck_tag,
		difficulty = excluded.difficulty,
		ease_factor = excluded.ease_factor,
		interval_days = excluded.interval_days,
		repetitions = excluded.repetitions,
		lapses = excluded.lapses,
		due_at = excluded.due_at,
		last_reviewed_at = excluded.last_reviewed_at,
		updated_at = excluded.updated_at`

// Get implements store.CardStore.Get.
func (s *CardStore) Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyCard, error) {
	var row cardRow
	query := `SELECT ` + selectColumns + ` FROM cards WHERE id = ?`

	err := s.db.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, store.NewStoreError("card", "get", "query failed", err)
	}

	return row.toDomain()
}

// Upsert implements store.CardStore.Upsert. Existing rows keep their
// position so insertion order survives updates.
func (s *CardStore) Upsert(ctx context.Context, card *domain.VocabularyCard) error {
	if card == nil {
		return fmt.Errorf("%w: nil card", store.ErrInvalidCard)
	}

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidCard, err)
	}

	if _, err := s.db.NamedExecContext(ctx, upsertQuery, rowFromDomain(card)); err != nil {
		return store.NewStoreError("card", "upsert", "write failed", err)
	}

	return nil
}

// UpsertAll implements store.BatchUpserter. The batch runs in a single
// transaction; a failure on any card rolls back the whole write.
func (s *CardStore) UpsertAll(ctx context.Context, cards []*domain.VocabularyCard) error {
	for _, card := range cards {
		if card == nil {
			return fmt.Errorf("%w: nil card", store.ErrInvalidCard)
		}
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidCard, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return store.NewStoreError("card", "upsert_all", "failed to begin transaction", err)
	}

	for _, card := range cards {
		if _, err := tx.NamedExecContext(ctx, upsertQuery, rowFromDomain(card)); err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.logger.Error("failed to roll back batch upsert",
					slog.String("error", rollbackErr.Error()))
			}
			return store.NewStoreError("card", "upsert_all", "write failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.NewStoreError("card", "upsert_all", "failed to commit transaction", err)
	}

	return nil
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id.String())
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
func (s *CardStore) All(ctx context.Context) ([]*domain.VocabularyCard, error) {
	query := `SELECT ` + selectColumns + ` FROM cards ORDER BY position`
	return s.selectCards(ctx, query)
}

// ByDeckTag implements store.CardStore.ByDeckTag.
func (s *CardStore) ByDeckTag(ctx context.Context, tag string) ([]*domain.VocabularyCard, error) {
	query := `SELECT ` + selectColumns + ` FROM cards WHERE deck_tag = ? ORDER BY position`
	return s.selectCards(ctx, query, tag)
}

func (s *CardStore) selectCards(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.VocabularyCard, error) {
	var rows []cardRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, store.NewStoreError("card", "select", "query failed", err)
	}

	cards := make([]*domain.VocabularyCard, 0, len(rows))
	for i := range rows {
		card, err := rows[i].toDomain()
		if err != nil {
			return nil, store.NewStoreError("card", "select", "row conversion failed", err)
		}
		cards = append(cards, card)
	}

	return cards, nil
}
