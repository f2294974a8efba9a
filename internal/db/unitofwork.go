package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// UnitOfWork runs a group of goal, checklist and streak writes atomically.
// gateway.Local wraps every add, edit and delete in one so that a subtree
// delete never leaves orphaned leaf rows behind.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork runs each unit in a database/sql transaction.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise, including on
// panic. A writer that outlasts the busy timeout surfaces as domain.ErrBusy
// so the engine reports it like any other in-flight mutation.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return busy(fmt.Errorf("beginning goal transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return busy(fmt.Errorf("rolling back goal transaction: %v (original error: %w)", rbErr, err))
		}
		return busy(err)
	}

	if err := tx.Commit(); err != nil {
		return busy(fmt.Errorf("committing goal transaction: %w", err))
	}
	return nil
}

// busy tags SQLite lock contention with domain.ErrBusy.
func busy(err error) error {
	if err == nil || errors.Is(err, domain.ErrBusy) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	}
	return err
}
