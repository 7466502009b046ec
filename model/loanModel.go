// model/loan.go
package model

import "time"

type LoanState string

const (
	LoanActive   LoanState = "ACTIVE"
	LoanPending  LoanState = "PENDING"
	LoanReturned LoanState = "RETURNED"
	LoanOverdue  LoanState = "OVERDUE"
)

func (s LoanState) Valid() bool {
	switch s {
	case LoanActive, LoanPending, LoanReturned, LoanOverdue:
		return true
	}
	return false
}

// Open reports a non-terminal state: the loan still holds the book.
func (s LoanState) Open() bool {
	return s.Valid() && s != LoanReturned
}

type Loan struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	BookID     int64     `json:"book_id"`
	LoanDate   Date      `json:"loan_date"`
	DueDate    Date      `json:"due_date"`
	ReturnedAt *Date     `json:"returned_at,omitempty"`
	State      LoanState `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type LoanFilter struct {
	State  LoanState
	BookID int64
	UserID int64
}

type LoanAction string

const (
	LoanCreated       LoanAction = "CREATED"
	LoanUpdated       LoanAction = "UPDATED"
	LoanMarkedReturn  LoanAction = "RETURNED"
	LoanDeleted       LoanAction = "DELETED"
	LoanMarkedOverdue LoanAction = "MARKED_OVERDUE"
)

// LoanEvent is one row of the loan activity journal.
type LoanEvent struct {
	LoanID  int64      `json:"loan_id"`
	BookID  int64      `json:"book_id"`
	UserID  int64      `json:"user_id"`
	ActorID int64      `json:"actor_id"`
	Action  LoanAction `json:"action"`
	State   LoanState  `json:"state"`
	At      time.Time  `json:"at"`
}
