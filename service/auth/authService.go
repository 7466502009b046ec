package auth

import (
	"context"
	"strings"
	"time"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	authrepo "github.com/MANUEL666GAMER/Biblioteca/repository/auth"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
	"github.com/MANUEL666GAMER/Biblioteca/util/hash"
	jwtutil "github.com/MANUEL666GAMER/Biblioteca/util/jwt"
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.Librarian, error)
	Login(ctx context.Context, req model.LoginReq) (*model.Librarian, string, error)
}

type service struct {
	repo   authrepo.Repo
	secret string
	ttl    time.Duration
}

func New(repo authrepo.Repo, secret string, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &service{repo: repo, secret: secret, ttl: ttl}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.Librarian, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || len(req.Password) < 6 {
		return nil, apperr.New(apperr.ErrValidation, "validation error")
	}

	existing, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.ErrEmailTaken, "email already registered")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	l := &model.Librarian{Name: name, Email: email, PasswordHash: hashed}
	if err := s.repo.Create(ctx, l); err != nil {
		// lost a race with a concurrent register
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.ErrEmailTaken, "email already registered")
		}
		return nil, err
	}
	return l, nil
}

// Login never says which half of the credentials was wrong.
func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.Librarian, string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", apperr.New(apperr.ErrInvalidCreds, "invalid email or password")
	}

	l, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if l == nil || !hash.Check(l.PasswordHash, req.Password) {
		return nil, "", apperr.New(apperr.ErrInvalidCreds, "invalid email or password")
	}

	token, err := jwtutil.Issue(s.secret, l.ID, l.Email, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return l, token, nil
}
