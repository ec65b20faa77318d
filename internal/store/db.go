package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the SQL statement surface the card stores need. Both
// *sql.DB and *sql.Tx implement it, so a store can run standalone or join a
// transaction (see RunInTransaction) without changing its queries.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Both database handle types satisfy DBTX.
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
