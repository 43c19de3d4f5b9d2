package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/qjiujiu/toy-readhub/model"
	userrepo "github.com/qjiujiu/toy-readhub/repository/user"
	"github.com/qjiujiu/toy-readhub/util/hash"
	jwtutil "github.com/qjiujiu/toy-readhub/util/jwt"
	"github.com/qjiujiu/toy-readhub/util/pgerr"
)

var (
	ErrStudentIDTaken = errors.New("student id already registered")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadInput       = errors.New("bad input")
	ErrInvalidCreds   = errors.New("invalid credentials")
)

type RegisterReq struct {
	Name      string
	StudentID string
	Email     *string
	Phone     string
	Password  string
}

type Service interface {
	Register(ctx context.Context, req RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, studentID, password string) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Register(ctx context.Context, req RegisterReq) (*model.User, string, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.Name == "" || req.StudentID == "" || len(req.Password) < 6 {
		return nil, "", ErrBadInput
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Name:         req.Name,
		StudentID:    req.StudentID,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.UID, "user", 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	if !pgerr.IsUniqueViolation(err) {
		return nil
	}
	cn := strings.ToLower(pgerr.ConstraintName(err))
	switch {
	case strings.Contains(cn, "student"):
		return ErrStudentIDTaken
	case strings.Contains(cn, "email"):
		return ErrEmailTaken
	}
	return ErrBadInput
}

func (s *service) Login(ctx context.Context, studentID, password string) (*model.User, string, error) {
	u, err := s.ur.ByStudentID(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, password) {
		return nil, "", ErrInvalidCreds
	}
	token, err := jwtutil.Issue(s.secret, u.UID, "user", 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
