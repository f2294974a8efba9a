package db

import (
	"context"
	"database/sql"
)

// DBTX is what the goal, checklist, streak and user repositories query
// through. It is a *sql.DB for one-off reads such as gateway.Local loading a
// tree, and a *sql.Tx inside UnitOfWork.WithinTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
