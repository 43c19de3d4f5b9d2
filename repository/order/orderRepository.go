package orderrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/qjiujiu/toy-readhub/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, warehouse string) (*model.Order, error)

	GetByID(ctx context.Context, orderID int64) (*model.Order, error)

	// GetForUpdate locks the order row for the read-check-write of a status
	// transition.
	GetForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, error)

	UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus, returnTime *time.Time) (int64, error)

	List(ctx context.Context, offset, limit int) ([]model.Order, int64, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Order, error)
	ListByBook(ctx context.Context, bookID int64, offset, limit int) ([]model.Order, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const orderCols = `order_id, user_id, book_id, warehouse_name, status, borrow_time, return_time`

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, warehouse string) (*model.Order, error) {
	const q = `
INSERT INTO orders (user_id, book_id, warehouse_name, status)
VALUES ($1,$2,$3,'borrowed')
RETURNING ` + orderCols
	return scanOrder(tx.QueryRowContext(ctx, q, userID, bookID, warehouse).Scan)
}

func scanOrder(scan func(...any) error) (*model.Order, error) {
	var o model.Order
	err := scan(&o.OrderID, &o.UserID, &o.BookID, &o.WarehouseName, &o.Status, &o.BorrowTime, &o.ReturnTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE order_id = $1`
	return scanOrder(r.db.QueryRowContext(ctx, q, orderID).Scan)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE order_id = $1 FOR UPDATE`
	return scanOrder(tx.QueryRowContext(ctx, q, orderID).Scan)
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus, returnTime *time.Time) (int64, error) {
	const q = `
UPDATE orders
SET status = $2,
    return_time = COALESCE($3, return_time)
WHERE order_id = $1`
	res, err := tx.ExecContext(ctx, q, orderID, status, returnTime)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) List(ctx context.Context, offset, limit int) ([]model.Order, int64, error) {
	const q = `
SELECT ` + orderCols + `, COUNT(*) OVER() AS total
FROM orders
ORDER BY order_id DESC
OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out   []model.Order
		total int64
	)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.BookID, &o.WarehouseName, &o.Status, &o.BorrowTime, &o.ReturnTime, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Order, error) {
	const q = `
SELECT ` + orderCols + `
FROM orders
WHERE user_id = $1
ORDER BY order_id DESC
OFFSET $2 LIMIT $3`
	return r.many(ctx, q, userID, offset, limit)
}

func (r *repo) ListByBook(ctx context.Context, bookID int64, offset, limit int) ([]model.Order, error) {
	const q = `
SELECT ` + orderCols + `
FROM orders
WHERE book_id = $1
ORDER BY order_id DESC
OFFSET $2 LIMIT $3`
	return r.many(ctx, q, bookID, offset, limit)
}

func (r *repo) many(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.BookID, &o.WarehouseName, &o.Status, &o.BorrowTime, &o.ReturnTime); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
