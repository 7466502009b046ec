package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MANUEL666GAMER/Biblioteca/model"
)

type Repo interface {
	Create(ctx context.Context, l *model.Librarian) error
	// ByEmail returns (nil, nil) when no account matches.
	ByEmail(ctx context.Context, email string) (*model.Librarian, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, l *model.Librarian) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO librarians(name, email, password_hash)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		l.Name, l.Email, l.PasswordHash,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.Librarian, error) {
	l := &model.Librarian{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, name, email, password_hash, created_at
        FROM librarians
        WHERE lower(email) = lower($1)`,
		email,
	).Scan(&l.ID, &l.Name, &l.Email, &l.PasswordHash, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
