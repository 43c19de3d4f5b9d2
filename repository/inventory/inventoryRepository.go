package invrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qjiujiu/toy-readhub/model"
)

type Repo interface {
	// LockByKey reads the row under FOR UPDATE so a check-then-write sequence
	// inside the same transaction cannot race a concurrent borrow.
	LockByKey(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string) (*model.InventoryRecord, error)

	Create(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, quantity int64) (*model.InventoryRecord, error)

	// Adjust applies quantity += delta as a single conditional UPDATE that
	// refuses to go negative. Returns the number of affected rows: 0 means
	// the row is missing or the delta would underflow stock.
	Adjust(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, delta int64) (int64, error)

	DeleteAllForBook(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const invCols = `inv_id, book_id, warehouse_name, quantity`

func (r *repo) LockByKey(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string) (*model.InventoryRecord, error) {
	const q = `
SELECT ` + invCols + `
FROM book_inventory
WHERE book_id = $1 AND warehouse_name = $2
FOR UPDATE`
	return scanOne(tx.QueryRowContext(ctx, q, bookID, warehouse))
}

func scanOne(row *sql.Row) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := row.Scan(&rec.InvID, &rec.BookID, &rec.WarehouseName, &rec.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repo) Create(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, quantity int64) (*model.InventoryRecord, error) {
	const q = `
INSERT INTO book_inventory (book_id, warehouse_name, quantity)
VALUES ($1,$2,$3)
RETURNING ` + invCols
	return scanOne(tx.QueryRowContext(ctx, q, bookID, warehouse, quantity))
}

func (r *repo) Adjust(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, delta int64) (int64, error) {
	const q = `
UPDATE book_inventory
SET quantity = quantity + $3
WHERE book_id = $1
  AND warehouse_name = $2
  AND quantity + $3 >= 0`
	res, err := tx.ExecContext(ctx, q, bookID, warehouse, delta)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) DeleteAllForBook(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM book_inventory WHERE book_id = $1`, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
