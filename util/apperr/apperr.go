package apperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrCode classifies failures so controllers can pick a status without
// looking at driver errors.
type ErrCode string

const (
	ErrMissingField     ErrCode = "MISSING_FIELD"
	ErrValidation       ErrCode = "VALIDATION"
	ErrInvalidDateRange ErrCode = "INVALID_DATE_RANGE"
	ErrBookUnavailable  ErrCode = "BOOK_UNAVAILABLE"
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound     ErrCode = "USER_NOT_FOUND"
	ErrCategoryNotFound ErrCode = "CATEGORY_NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrInUse            ErrCode = "IN_USE"
	ErrLoanNotOpen      ErrCode = "LOAN_NOT_OPEN"
	ErrInvalidCreds     ErrCode = "INVALID_CREDS"
	ErrEmailTaken       ErrCode = "EMAIL_TAKEN"
	ErrInvalidImage     ErrCode = "INVALID_IMAGE"
)

type codedError struct {
	code ErrCode
	msg  string
	err  error
}

func (e *codedError) Error() string {
	if e.msg == "" {
		return string(e.code)
	}
	return e.msg
}
func (e *codedError) Code() ErrCode { return e.code }
func (e *codedError) Unwrap() error { return e.err }

// New returns an error carrying code; msg is optional.
func New(code ErrCode, msg ...string) error {
	return &codedError{code: code, msg: strings.Join(msg, " ")}
}

// Wrap keeps err reachable through errors.Is/As. A msg replaces the cause
// in Error() so the cause stays out of client responses.
func Wrap(code ErrCode, err error, msg ...string) error {
	if err == nil {
		return nil
	}
	m := strings.Join(msg, " ")
	if m == "" {
		m = string(code) + ": " + err.Error()
	}
	return &codedError{code: code, msg: m, err: err}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// PgViolation reports the SQLSTATE class we care about and the constraint name.
func PgViolation(err error) (code string, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
		return pgErr.Code, strings.ToLower(pgErr.ConstraintName), true
	}
	return "", "", false
}

func IsUniqueViolation(err error) bool {
	c, _, ok := PgViolation(err)
	return ok && c == pgerrcode.UniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	c, _, ok := PgViolation(err)
	return ok && c == pgerrcode.ForeignKeyViolation
}
