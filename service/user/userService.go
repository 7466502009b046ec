package usersvc

import (
	"context"
	"strings"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	userrepo "github.com/MANUEL666GAMER/Biblioteca/repository/user"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

// Service manages library patrons.
type Service interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
}

type service struct{ r userrepo.Repo }

func New(r userrepo.Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context) ([]model.User, error) { return s.r.List(ctx) }

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) Create(ctx context.Context, u *model.User) error {
	if err := normalize(u); err != nil {
		return err
	}
	return mapErr(s.r.Create(ctx, u))
}

func (s *service) Update(ctx context.Context, u *model.User) error {
	if err := normalize(u); err != nil {
		return err
	}
	return mapErr(s.r.Update(ctx, u))
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return mapErr(s.r.Delete(ctx, id))
}

func normalize(u *model.User) error {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Phone = strings.TrimSpace(u.Phone)
	u.Address = strings.TrimSpace(u.Address)
	if u.FirstName == "" || u.LastName == "" || u.Email == "" {
		return apperr.New(apperr.ErrMissingField, "missing field")
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case apperr.IsUniqueViolation(err):
		return apperr.New(apperr.ErrEmailTaken, "email already registered")
	case apperr.IsForeignKeyViolation(err):
		return apperr.New(apperr.ErrInUse, "user has loans")
	}
	return err
}
