package booksvc

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/jackc/pgerrcode"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	bookrepo "github.com/MANUEL666GAMER/Biblioteca/repository/book"
	"github.com/MANUEL666GAMER/Biblioteca/repository/image"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

type Service interface {
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	// Create and Update take an optional cover image.
	Create(ctx context.Context, b *model.Book, img *multipart.FileHeader) error
	Update(ctx context.Context, b *model.Book, img *multipart.FileHeader) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	r      bookrepo.Repo
	images image.Store
}

func New(r bookrepo.Repo, images image.Store) Service { return &service{r: r, images: images} }

func (s *service) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return s.r.List(ctx, f)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return s.r.Detail(ctx, id)
}

func (s *service) Create(ctx context.Context, b *model.Book, img *multipart.FileHeader) error {
	if err := normalize(b); err != nil {
		return err
	}
	if b.Status == model.BookLoaned {
		b.Status = model.BookAvailable
	}
	b.ImagePath = nil
	saved, err := s.saveImage(img)
	if err != nil {
		return err
	}
	b.ImagePath = saved

	if err := s.r.Create(ctx, b); err != nil {
		s.dropImage(saved)
		return mapWriteErr(err)
	}
	return nil
}

func (s *service) Update(ctx context.Context, b *model.Book, img *multipart.FileHeader) error {
	if err := normalize(b); err != nil {
		return err
	}
	b.ImagePath = nil
	saved, err := s.saveImage(img)
	if err != nil {
		return err
	}
	b.ImagePath = saved

	old, err := s.r.Update(ctx, b)
	if err != nil {
		s.dropImage(saved)
		return mapWriteErr(err)
	}
	if saved != nil && old != nil && *old != *saved {
		s.dropImage(old)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.r.Delete(ctx, id)
	if apperr.IsForeignKeyViolation(err) {
		return apperr.New(apperr.ErrInUse, "book has loans")
	}
	return err
}

func (s *service) saveImage(img *multipart.FileHeader) (*string, error) {
	if img == nil || s.images == nil {
		return nil, nil
	}
	p, err := s.images.Save(img)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) dropImage(p *string) {
	if p != nil && s.images != nil {
		_ = s.images.Remove(*p)
	}
}

func normalize(b *model.Book) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.ISBN = strings.TrimSpace(b.ISBN)
	b.Publisher = strings.TrimSpace(b.Publisher)
	if b.Title == "" || b.Author == "" || b.CategoryID <= 0 {
		return apperr.New(apperr.ErrMissingField, "missing field")
	}
	if b.Status == "" {
		b.Status = model.BookAvailable
	}
	if !b.Status.Storable() && b.Status != model.BookLoaned {
		return apperr.New(apperr.ErrValidation, "validation error")
	}
	if b.PublicationYear != 0 && (b.PublicationYear < 1000 || b.PublicationYear > 9999) {
		return apperr.New(apperr.ErrValidation, "validation error")
	}
	return nil
}

func mapWriteErr(err error) error {
	code, constraint, ok := apperr.PgViolation(err)
	if !ok {
		return err
	}
	switch {
	case constraint == "books_category_id_fkey":
		return apperr.New(apperr.ErrCategoryNotFound, "category not found")
	case code == pgerrcode.CheckViolation:
		return apperr.New(apperr.ErrValidation, "validation error")
	}
	return err
}
