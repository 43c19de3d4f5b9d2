package usersvc

import (
	"context"
	"errors"

	"github.com/qjiujiu/toy-readhub/model"
	userrepo "github.com/qjiujiu/toy-readhub/repository/user"
)

var ErrUserNotFound = errors.New("user not found")

type Service interface {
	GetByID(ctx context.Context, uid int64) (*model.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, uid int64, u model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, uid int64) error
}

type service struct{ r userrepo.Repo }

func New(r userrepo.Repo) Service { return &service{r: r} }

func (s *service) GetByID(ctx context.Context, uid int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	u, err := s.r.ByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	return s.r.List(ctx, offset, limit)
}

func (s *service) Update(ctx context.Context, uid int64, u model.UserUpdate) (*model.User, error) {
	if u.Empty() {
		return s.GetByID(ctx, uid)
	}
	out, err := s.r.Update(ctx, uid, u)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrUserNotFound
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, uid int64) error {
	ok, err := s.r.Delete(ctx, uid)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}
