// Package storage is the SQLite side of the reading log: the transactional
// collaborator the reconciler writes through, plus the read-only queries
// the HTTP handlers and batch tools use.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"readlog/internal/apperr"
	"readlog/internal/reconcile"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

var _ reconcile.Store = (*Store)(nil)

// WithinTx runs fn inside one transaction. The transaction is rolled back
// on every path except a nil return from fn followed by a successful commit.
func (s *Store) WithinTx(ctx context.Context, fn func(tx reconcile.Tx) error) (err error) {
	sqlTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&Tx{q: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return classify("commit transaction", err)
	}
	committed = true
	return nil
}

// classify maps a driver error onto the storage error codes. Constraint
// failures mean the data disagrees with the schema; everything else is
// treated as the store being unreachable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return apperr.Wrap(apperr.CodeStorageInconsistency, op, err)
	}
	return apperr.Wrap(apperr.CodeStorageUnavailable, op, err)
}

func rowsAffectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n != 1 {
		return apperr.New(apperr.CodeStorageInconsistency, fmt.Sprintf("%s: %d rows affected", op, n))
	}
	return nil
}
