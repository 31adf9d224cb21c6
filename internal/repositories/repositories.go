package repositories

import (
	"context"
	"database/sql"

	"github.com/desertthunder/lyrx/internal/shared"
)

// withTx runs fn inside a transaction, committing on success and rolling back otherwise.
//
// fn must issue every statement through tx: sqlite pools hold a single connection,
// so a query on the *sql.DB while the transaction is open blocks forever.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return shared.NewStoreError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return shared.NewStoreError("commit transaction", err)
	}
	return nil
}

// execer is the subset of *sql.DB and *sql.Tx used by statements that may run either way.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
