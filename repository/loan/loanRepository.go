// repository/loan/repo.go
package loan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

type Repo interface {
	List(ctx context.Context, f model.LoanFilter) ([]model.Loan, error)
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	// Delete returns the removed row.
	Delete(ctx context.Context, id int64) (*model.Loan, error)
	// MarkOverdue flips ACTIVE loans due before today to OVERDUE.
	MarkOverdue(ctx context.Context, today model.Date) ([]model.Loan, error)

	// InTx runs fn inside one transaction; the TxRepo is only valid inside fn.
	InTx(ctx context.Context, fn func(tx TxRepo) error) error
}

// TxRepo holds the statements that make up loan admission and loan edits.
type TxRepo interface {
	// LockBook takes a row lock on the book so admissions for it serialize.
	LockBook(ctx context.Context, bookID int64) error
	LockLoan(ctx context.Context, id int64) (*model.Loan, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error)
	Insert(ctx context.Context, l *model.Loan) error
	Update(ctx context.Context, l *model.Loan) error
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

const loanColumns = `id, user_id, book_id, loan_date, due_date, returned_at, state, created_at, updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanLoan(s scanner, l *model.Loan) error {
	return s.Scan(&l.ID, &l.UserID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnedAt, &l.State, &l.CreatedAt, &l.UpdatedAt)
}

func collect(rows *sql.Rows) ([]model.Loan, error) {
	defer rows.Close()
	out := []model.Loan{}
	for rows.Next() {
		var l model.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) List(ctx context.Context, f model.LoanFilter) ([]model.Loan, error) {
	q := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE ($1 = '' OR state = $1)
		  AND ($2::BIGINT = 0 OR book_id = $2)
		  AND ($3::BIGINT = 0 OR user_id = $3)
		ORDER BY loan_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, string(f.State), f.BookID, f.UserID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	var l model.Loan
	err := scanLoan(r.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (*model.Loan, error) {
	var l model.Loan
	err := scanLoan(r.db.QueryRowContext(ctx, `DELETE FROM loans WHERE id = $1 RETURNING `+loanColumns, id), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repo) MarkOverdue(ctx context.Context, today model.Date) ([]model.Loan, error) {
	const q = `
		UPDATE loans
		SET state = 'OVERDUE',
			updated_at = NOW()
		WHERE state = 'ACTIVE'
		AND due_date < $1
		RETURNING ` + loanColumns
	rows, err := r.db.QueryContext(ctx, q, today)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repo) InTx(ctx context.Context, fn func(tx TxRepo) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type txRepo struct{ tx *sql.Tx }

func (t *txRepo) LockBook(ctx context.Context, bookID int64) error {
	const q = `
		SELECT id
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var id int64
	err := t.tx.QueryRowContext(ctx, q, bookID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.ErrBookNotFound, "book not found")
	}
	return err
}

func (t *txRepo) LockLoan(ctx context.Context, id int64) (*model.Loan, error) {
	var l model.Loan
	err := scanLoan(t.tx.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *txRepo) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE book_id = $1 ORDER BY id`, bookID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (t *txRepo) Insert(ctx context.Context, l *model.Loan) error {
	const q = `
		INSERT INTO loans (user_id, book_id, loan_date, due_date, returned_at, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return t.tx.QueryRowContext(ctx, q, l.UserID, l.BookID, l.LoanDate, l.DueDate, l.ReturnedAt, string(l.State)).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (t *txRepo) Update(ctx context.Context, l *model.Loan) error {
	const q = `
		UPDATE loans
		SET user_id = $2, book_id = $3, loan_date = $4, due_date = $5, returned_at = $6, state = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := t.tx.QueryRowContext(ctx, q, l.ID, l.UserID, l.BookID, l.LoanDate, l.DueDate, l.ReturnedAt, string(l.State)).
		Scan(&l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.ErrNotFound, "loan not found")
	}
	return err
}
