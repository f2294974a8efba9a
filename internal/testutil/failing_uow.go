package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/goaltree/internal/db"
)

// FailingUoW runs each unit of work in a real transaction but fails the
// FailOn-th write whose SQL mentions Table (every write when Table is
// empty). Counting starts at 1 and spans transactions; reads are never
// counted.
type FailingUoW struct {
	DB     *sql.DB
	Table  string
	FailOn int32
	Err    error

	writes atomic.Int32
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(ctx, &failingTx{DBTX: tx, uow: u}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Writes returns how many matching writes were attempted.
func (u *FailingUoW) Writes() int {
	return int(u.writes.Load())
}

type failingTx struct {
	db.DBTX
	uow *FailingUoW
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Table == "" || strings.Contains(query, f.uow.Table) {
		if f.uow.writes.Add(1) == f.uow.FailOn {
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
