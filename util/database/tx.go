package database

import (
	"context"
	"database/sql"
)

// TxRunner scopes a function to one database transaction: begin, run, commit
// on success, rollback on error. Every orchestration that touches more than
// one row goes through this; batch operations call it once per item so one
// item's failure never holds a lock across its neighbors.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type Runner struct{ db *sql.DB }

func NewRunner(db *sql.DB) *Runner { return &Runner{db: db} }

func (r *Runner) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
