package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qjiujiu/toy-readhub/model"
)

type Repo interface {
	// Create inserts the catalog row and fills b.BID. Runs inside the
	// caller's transaction: book creation is always one step of an ingestion.
	Create(ctx context.Context, tx *sql.Tx, b *model.Book) error

	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	GetByID(ctx context.Context, bid int64) (*model.Book, error)
	FindByTitle(ctx context.Context, title string) ([]model.Book, error)
	FindByAuthor(ctx context.Context, author string) ([]model.Book, error)
	List(ctx context.Context, offset, limit int) ([]model.Book, int64, error)

	UpdateByISBN(ctx context.Context, isbn string, u model.BookUpdate) (*model.Book, error)
	Delete(ctx context.Context, tx *sql.Tx, bid int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookCols = `bid, title, author, isbn, abstract, tags`

func (r *repo) Create(ctx context.Context, tx *sql.Tx, b *model.Book) error {
	const q = `
INSERT INTO books (title, author, isbn, abstract, tags)
VALUES ($1,$2,$3,$4,$5)
RETURNING bid`
	return tx.QueryRowContext(ctx, q, b.Title, b.Author, b.ISBN, b.Abstract, b.Tag).Scan(&b.BID)
}

func (r *repo) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE isbn = $1`
	return r.one(ctx, q, isbn)
}

func (r *repo) GetByID(ctx context.Context, bid int64) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE bid = $1`
	return r.one(ctx, q, bid)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.Book, error) {
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&b.BID, &b.Title, &b.Author, &b.ISBN, &b.Abstract, &b.Tag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) FindByTitle(ctx context.Context, title string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE title = $1 ORDER BY bid`
	return r.many(ctx, q, title)
}

func (r *repo) FindByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE author = $1 ORDER BY bid`
	return r.many(ctx, q, author)
}

func (r *repo) many(ctx context.Context, q string, arg any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.BID, &b.Title, &b.Author, &b.ISBN, &b.Abstract, &b.Tag); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) List(ctx context.Context, offset, limit int) ([]model.Book, int64, error) {
	const q = `
SELECT ` + bookCols + `, COUNT(*) OVER() AS total
FROM books
ORDER BY bid
OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out   []model.Book
		total int64
	)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.BID, &b.Title, &b.Author, &b.ISBN, &b.Abstract, &b.Tag, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		// OFFSET past the end returns no rows; fetch the count separately.
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *repo) UpdateByISBN(ctx context.Context, isbn string, u model.BookUpdate) (*model.Book, error) {
	const q = `
UPDATE books
SET title    = COALESCE($2, title),
    author   = COALESCE($3, author),
    abstract = COALESCE($4, abstract),
    tags     = COALESCE($5, tags)
WHERE isbn = $1
RETURNING ` + bookCols
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, isbn, u.Title, u.Author, u.Abstract, u.Tag).
		Scan(&b.BID, &b.Title, &b.Author, &b.ISBN, &b.Abstract, &b.Tag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, bid int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE bid = $1`, bid)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	return aff > 0, err
}
