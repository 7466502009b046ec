package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

type Repo interface {
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	// Update returns the image path stored before the write.
	Update(ctx context.Context, b *model.Book) (*string, error)
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// LOANED is reported whenever the book has an open loan; the stored status
// only distinguishes AVAILABLE from UNDER_REPAIR.
const selectBook = `
SELECT b.id, b.title, b.author, b.isbn, b.publisher, b.publication_year, b.category_id,
       CASE WHEN EXISTS (SELECT 1 FROM loans l WHERE l.book_id = b.id AND l.state <> 'RETURNED')
            THEN 'LOANED' ELSE b.status END AS status,
       b.image_path, b.created_at, b.updated_at
FROM books b`

const returningBook = `
RETURNING id, title, author, isbn, publisher, publication_year, category_id,
          CASE WHEN EXISTS (SELECT 1 FROM loans l WHERE l.book_id = books.id AND l.state <> 'RETURNED')
               THEN 'LOANED' ELSE status END,
          image_path, created_at, updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanBook(s scanner, b *model.Book) error {
	return s.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Publisher, &b.PublicationYear, &b.CategoryID,
		&b.Status, &b.ImagePath, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	q := selectBook + `
WHERE ($1::BIGINT = 0 OR b.category_id = $1)
ORDER BY b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, f.CategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	var b model.Book
	err := scanBook(r.db.QueryRowContext(ctx, selectBook+` WHERE b.id = $1`, id), &b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ErrNotFound, "book not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	q := `
INSERT INTO books (title, author, isbn, publisher, publication_year, category_id, status, image_path)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)` + returningBook
	return scanBook(r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Publisher, b.PublicationYear, b.CategoryID, b.Status, b.ImagePath,
	), b)
}

// Update replaces every column; a nil ImagePath keeps the stored image and
// a LOANED status keeps the stored status.
func (r *repo) Update(ctx context.Context, b *model.Book) (*string, error) {
	q := `
WITH prev AS (SELECT id, image_path FROM books WHERE id = $1 FOR UPDATE)
UPDATE books
SET title = $2, author = $3, isbn = $4, publisher = $5, publication_year = $6,
    category_id = $7, status = CASE WHEN $8::TEXT = 'LOANED' THEN books.status ELSE $8::TEXT END,
    image_path = COALESCE($9, books.image_path), updated_at = NOW()
FROM prev
WHERE books.id = prev.id
RETURNING books.id, books.title, books.author, books.isbn, books.publisher, books.publication_year,
          books.category_id,
          CASE WHEN EXISTS (SELECT 1 FROM loans l WHERE l.book_id = books.id AND l.state <> 'RETURNED')
               THEN 'LOANED' ELSE books.status END,
          books.image_path, books.created_at, books.updated_at, prev.image_path`
	var prev *string
	err := r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.ISBN, b.Publisher, b.PublicationYear, b.CategoryID, b.Status, b.ImagePath,
	).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Publisher, &b.PublicationYear, &b.CategoryID,
		&b.Status, &b.ImagePath, &b.CreatedAt, &b.UpdatedAt, &prev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ErrNotFound, "book not found")
	}
	if err != nil {
		return nil, err
	}
	return prev, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.ErrNotFound, "book not found")
	}
	return nil
}
