package loan

import (
	"time"

	"github.com/MANUEL666GAMER/Biblioteca/model"
)

type RejectReason string

const (
	ReasonInvalidDateRange RejectReason = "invalid date range"
	ReasonBookUnavailable  RejectReason = "book unavailable"
)

// LoanRequest is a candidate loan. Dates are compared as calendar days.
type LoanRequest struct {
	BookID   int64
	UserID   int64
	LoanDate time.Time
	DueDate  time.Time
}

type Decision struct {
	Accepted bool
	Reason   RejectReason
}

func accept() Decision               { return Decision{Accepted: true} }
func reject(r RejectReason) Decision { return Decision{Reason: r} }

// EvaluateLoanRequest decides whether req may be persisted given the loans
// currently recorded for req.BookID. It performs no I/O.
//
// The date range is checked first; a book is unavailable while any of its
// loans is ACTIVE, PENDING or OVERDUE, whoever holds it.
func EvaluateLoanRequest(req LoanRequest, existing []model.Loan) Decision {
	if !model.NewDate(req.DueDate).AfterDate(model.NewDate(req.LoanDate)) {
		return reject(ReasonInvalidDateRange)
	}
	for _, l := range existing {
		if l.State.Open() {
			return reject(ReasonBookUnavailable)
		}
	}
	return accept()
}
