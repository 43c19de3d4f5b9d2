package authsvc_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/qjiujiu/toy-readhub/model"
	authsvc "github.com/qjiujiu/toy-readhub/service/auth"
	"github.com/qjiujiu/toy-readhub/util/hash"
)

type userRepoMock struct {
	createFn      func(ctx context.Context, u *model.User) error
	byStudentIDFn func(ctx context.Context, studentID string) (*model.User, error)
}

func (m *userRepoMock) Create(ctx context.Context, u *model.User) error { return m.createFn(ctx, u) }
func (m *userRepoMock) ByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return m.byStudentIDFn(ctx, studentID)
}
func (m *userRepoMock) ByID(context.Context, int64) (*model.User, error) { return nil, nil }
func (m *userRepoMock) List(context.Context, int, int) ([]model.User, int64, error) {
	return nil, 0, nil
}
func (m *userRepoMock) Update(context.Context, int64, model.UserUpdate) (*model.User, error) {
	return nil, nil
}
func (m *userRepoMock) Delete(context.Context, int64) (bool, error) { return false, nil }

func registerReq() authsvc.RegisterReq {
	return authsvc.RegisterReq{
		Name:      "Wang Wei",
		StudentID: "20230001",
		Phone:     "13800000000",
		Password:  "secret1",
	}
}

func TestRegister_Success(t *testing.T) {
	mock := &userRepoMock{
		createFn: func(_ context.Context, u *model.User) error {
			u.UID = 42
			return nil
		},
	}
	svc := authsvc.New(mock, "test-secret")

	u, token, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	require.Equal(t, int64(42), u.UID)
	require.NotEmpty(t, token)
	require.NotEqual(t, "secret1", u.PasswordHash, "password is never stored in the clear")
	require.True(t, hash.Check(u.PasswordHash, "secret1"))
}

func TestRegister_BadInput(t *testing.T) {
	svc := authsvc.New(&userRepoMock{}, "test-secret")
	ctx := context.Background()

	for _, req := range []authsvc.RegisterReq{
		{Name: "", StudentID: "20230001", Password: "secret1"},
		{Name: "Wang Wei", StudentID: "   ", Password: "secret1"},
		{Name: "Wang Wei", StudentID: "20230001", Password: "short"},
	} {
		_, _, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, authsvc.ErrBadInput)
	}
}

func TestRegister_DuplicateStudentID(t *testing.T) {
	mock := &userRepoMock{
		createFn: func(context.Context, *model.User) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_student_id_key"}
		},
	}
	svc := authsvc.New(mock, "test-secret")

	_, _, err := svc.Register(context.Background(), registerReq())
	require.ErrorIs(t, err, authsvc.ErrStudentIDTaken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mock := &userRepoMock{
		createFn: func(context.Context, *model.User) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		},
	}
	svc := authsvc.New(mock, "test-secret")

	_, _, err := svc.Register(context.Background(), registerReq())
	require.ErrorIs(t, err, authsvc.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	hashed, err := hash.HashPassword("secret1")
	require.NoError(t, err)

	mock := &userRepoMock{
		byStudentIDFn: func(_ context.Context, studentID string) (*model.User, error) {
			if studentID != "20230001" {
				return nil, nil
			}
			return &model.User{UID: 42, StudentID: studentID, PasswordHash: hashed}, nil
		},
	}
	svc := authsvc.New(mock, "test-secret")
	ctx := context.Background()

	u, token, err := svc.Login(ctx, "20230001", "secret1")
	require.NoError(t, err)
	require.Equal(t, int64(42), u.UID)
	require.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "20230001", "wrong")
	require.ErrorIs(t, err, authsvc.ErrInvalidCreds)

	_, _, err = svc.Login(ctx, "20239999", "secret1")
	require.ErrorIs(t, err, authsvc.ErrInvalidCreds)
}
