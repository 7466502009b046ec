package loan

import (
	"github.com/MANUEL666GAMER/Biblioteca/model"
)

// CreateLoanReq leaves state optional; it defaults to ACTIVE.
type CreateLoanReq struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	BookID   int64  `json:"book_id" validate:"required,gt=0"`
	LoanDate string `json:"loan_date" validate:"required,datetime=2006-01-02"`
	DueDate  string `json:"due_date" validate:"required,datetime=2006-01-02"`
	State    string `json:"state" validate:"omitempty,oneof=ACTIVE PENDING"`
}

// UpdateLoanReq replaces the whole loan.
type UpdateLoanReq struct {
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	BookID     int64  `json:"book_id" validate:"required,gt=0"`
	LoanDate   string `json:"loan_date" validate:"required,datetime=2006-01-02"`
	DueDate    string `json:"due_date" validate:"required,datetime=2006-01-02"`
	ReturnedAt string `json:"returned_at" validate:"omitempty,datetime=2006-01-02"`
	State      string `json:"state" validate:"required,oneof=ACTIVE PENDING RETURNED OVERDUE"`
}

// Dates were checked by the validator, so parse errors cannot happen here.
func (r CreateLoanReq) toModel() *model.Loan {
	loanDate, _ := model.ParseDate(r.LoanDate)
	dueDate, _ := model.ParseDate(r.DueDate)
	return &model.Loan{
		UserID:   r.UserID,
		BookID:   r.BookID,
		LoanDate: loanDate,
		DueDate:  dueDate,
		State:    model.LoanState(r.State),
	}
}

func (r UpdateLoanReq) toModel(id int64) *model.Loan {
	loanDate, _ := model.ParseDate(r.LoanDate)
	dueDate, _ := model.ParseDate(r.DueDate)
	l := &model.Loan{
		ID:       id,
		UserID:   r.UserID,
		BookID:   r.BookID,
		LoanDate: loanDate,
		DueDate:  dueDate,
		State:    model.LoanState(r.State),
	}
	if r.ReturnedAt != "" {
		d, _ := model.ParseDate(r.ReturnedAt)
		l.ReturnedAt = &d
	}
	return l
}
