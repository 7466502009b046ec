package categorysvc

import (
	"context"
	"strings"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	categoryrepo "github.com/MANUEL666GAMER/Biblioteca/repository/category"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

type Service interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id int64) error
}

type service struct{ r categoryrepo.Repo }

func New(r categoryrepo.Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context) ([]model.Category, error) { return s.r.List(ctx) }

func (s *service) Get(ctx context.Context, id int64) (*model.Category, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) Create(ctx context.Context, c *model.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.New(apperr.ErrMissingField, "missing field")
	}
	return mapErr(s.r.Create(ctx, c))
}

func (s *service) Update(ctx context.Context, c *model.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.New(apperr.ErrMissingField, "missing field")
	}
	return mapErr(s.r.Update(ctx, c))
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return mapErr(s.r.Delete(ctx, id))
}

func mapErr(err error) error {
	switch {
	case apperr.IsUniqueViolation(err):
		return apperr.New(apperr.ErrConflict, "category already exists")
	case apperr.IsForeignKeyViolation(err):
		return apperr.New(apperr.ErrInUse, "category has books")
	}
	return err
}
