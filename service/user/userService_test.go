package usersvc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qjiujiu/toy-readhub/model"
	usersvc "github.com/qjiujiu/toy-readhub/service/user"
)

type userRepoMock struct {
	byIDFn        func(ctx context.Context, uid int64) (*model.User, error)
	byStudentIDFn func(ctx context.Context, studentID string) (*model.User, error)
	updateFn      func(ctx context.Context, uid int64, u model.UserUpdate) (*model.User, error)
	deleteFn      func(ctx context.Context, uid int64) (bool, error)
}

func (m *userRepoMock) Create(context.Context, *model.User) error { return nil }
func (m *userRepoMock) ByID(ctx context.Context, uid int64) (*model.User, error) {
	return m.byIDFn(ctx, uid)
}
func (m *userRepoMock) ByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return m.byStudentIDFn(ctx, studentID)
}
func (m *userRepoMock) List(context.Context, int, int) ([]model.User, int64, error) {
	return nil, 0, nil
}
func (m *userRepoMock) Update(ctx context.Context, uid int64, u model.UserUpdate) (*model.User, error) {
	return m.updateFn(ctx, uid, u)
}
func (m *userRepoMock) Delete(ctx context.Context, uid int64) (bool, error) {
	return m.deleteFn(ctx, uid)
}

func TestGetByID(t *testing.T) {
	mock := &userRepoMock{
		byIDFn: func(_ context.Context, uid int64) (*model.User, error) {
			if uid != 42 {
				return nil, nil
			}
			return &model.User{UID: 42, Name: "Wang Wei"}, nil
		},
	}
	svc := usersvc.New(mock)
	ctx := context.Background()

	u, err := svc.GetByID(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "Wang Wei", u.Name)

	_, err = svc.GetByID(ctx, 404)
	require.ErrorIs(t, err, usersvc.ErrUserNotFound)
}

func TestUpdate_EmptyPatchReadsBack(t *testing.T) {
	updateCalled := false
	mock := &userRepoMock{
		byIDFn: func(_ context.Context, uid int64) (*model.User, error) {
			return &model.User{UID: uid, Name: "Wang Wei"}, nil
		},
		updateFn: func(_ context.Context, uid int64, u model.UserUpdate) (*model.User, error) {
			updateCalled = true
			return &model.User{UID: uid}, nil
		},
	}
	svc := usersvc.New(mock)

	u, err := svc.Update(context.Background(), 42, model.UserUpdate{})
	require.NoError(t, err)
	require.Equal(t, "Wang Wei", u.Name)
	require.False(t, updateCalled, "an empty patch must not write")
}

func TestDelete(t *testing.T) {
	mock := &userRepoMock{
		deleteFn: func(_ context.Context, uid int64) (bool, error) { return uid == 42, nil },
	}
	svc := usersvc.New(mock)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 42))
	require.ErrorIs(t, svc.Delete(ctx, 404), usersvc.ErrUserNotFound)
}
