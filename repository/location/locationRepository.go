package locrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qjiujiu/toy-readhub/model"
)

type Repo interface {
	// Create inserts the shelf placement and fills loc.LocID. The composite
	// FK onto book_inventory makes a location without backing stock a
	// constraint violation, which the service maps to MissingInventory.
	Create(ctx context.Context, tx *sql.Tx, loc *model.LocationRecord) error

	// Update mutates area/floor only; the (book, warehouse) key is fixed for
	// the row's lifetime.
	Update(ctx context.Context, locID int64, area, floor *string) (*model.LocationRecord, error)

	GetDetail(ctx context.Context, bookID int64, warehouse string) (*model.BookDetail, error)
	ListDetailsByBookID(ctx context.Context, bookID int64) ([]model.BookDetail, error)

	DeleteAllForBook(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, tx *sql.Tx, loc *model.LocationRecord) error {
	const q = `
INSERT INTO book_locations (book_id, warehouse_name, area, floor)
VALUES ($1,$2,$3,$4)
RETURNING loc_id`
	return tx.QueryRowContext(ctx, q, loc.BookID, loc.WarehouseName, loc.Area, loc.Floor).Scan(&loc.LocID)
}

func (r *repo) Update(ctx context.Context, locID int64, area, floor *string) (*model.LocationRecord, error) {
	const q = `
UPDATE book_locations
SET area  = COALESCE($2, area),
    floor = COALESCE($3, floor)
WHERE loc_id = $1
RETURNING loc_id, book_id, warehouse_name, area, floor`
	var loc model.LocationRecord
	err := r.db.QueryRowContext(ctx, q, locID, area, floor).
		Scan(&loc.LocID, &loc.BookID, &loc.WarehouseName, &loc.Area, &loc.Floor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

const detailQuery = `
SELECT b.bid, b.title, b.author, b.isbn, b.abstract, b.tags,
       l.warehouse_name, l.area, l.floor, i.quantity
FROM book_locations l
JOIN books b ON b.bid = l.book_id
JOIN book_inventory i
  ON i.book_id = l.book_id AND i.warehouse_name = l.warehouse_name`

func scanDetail(scan func(...any) error) (*model.BookDetail, error) {
	var d model.BookDetail
	if err := scan(
		&d.Book.BID, &d.Book.Title, &d.Book.Author, &d.Book.ISBN, &d.Book.Abstract, &d.Book.Tag,
		&d.WarehouseName, &d.Area, &d.Floor, &d.Quantity,
	); err != nil {
		return nil, err
	}
	if d.Book.Tag != nil {
		if name, ok := model.TagName(*d.Book.Tag); ok {
			d.TagName = name
		}
	}
	return &d, nil
}

func (r *repo) GetDetail(ctx context.Context, bookID int64, warehouse string) (*model.BookDetail, error) {
	const q = detailQuery + `
WHERE l.book_id = $1 AND l.warehouse_name = $2`
	row := r.db.QueryRowContext(ctx, q, bookID, warehouse)
	d, err := scanDetail(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repo) ListDetailsByBookID(ctx context.Context, bookID int64) ([]model.BookDetail, error) {
	const q = detailQuery + `
WHERE l.book_id = $1
ORDER BY l.warehouse_name, l.loc_id`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookDetail
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *repo) DeleteAllForBook(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM book_locations WHERE book_id = $1`, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
