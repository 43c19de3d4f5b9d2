package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qjiujiu/toy-readhub/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, uid int64) (*model.User, error)
	ByStudentID(ctx context.Context, studentID string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, uid int64, u model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, uid int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const userCols = `uid, name, student_id, email, phone, password_hash, created_at`

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (name, student_id, email, phone, password_hash)
VALUES ($1,$2,$3,$4,$5)
RETURNING uid, created_at`
	return r.db.QueryRowContext(ctx, q, u.Name, u.StudentID, u.Email, u.Phone, u.PasswordHash).
		Scan(&u.UID, &u.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, uid int64) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE uid = $1`
	return r.one(ctx, q, uid)
}

func (r *repo) ByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE student_id = $1`
	return r.one(ctx, q, studentID)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&u.UID, &u.Name, &u.StudentID, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	const q = `
SELECT ` + userCols + `, COUNT(*) OVER() AS total
FROM users
ORDER BY uid
OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out   []model.User
		total int64
	)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UID, &u.Name, &u.StudentID, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *repo) Update(ctx context.Context, uid int64, u model.UserUpdate) (*model.User, error) {
	const q = `
UPDATE users
SET name  = COALESCE($2, name),
    email = COALESCE($3, email),
    phone = COALESCE($4, phone)
WHERE uid = $1
RETURNING ` + userCols
	var out model.User
	err := r.db.QueryRowContext(ctx, q, uid, u.Name, u.Email, u.Phone).
		Scan(&out.UID, &out.Name, &out.StudentID, &out.Email, &out.Phone, &out.PasswordHash, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) Delete(ctx context.Context, uid int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	return aff > 0, err
}
