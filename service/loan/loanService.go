package loan

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	"github.com/MANUEL666GAMER/Biblioteca/repository/activity"
	loanrepo "github.com/MANUEL666GAMER/Biblioteca/repository/loan"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
	jwtutil "github.com/MANUEL666GAMER/Biblioteca/util/jwt"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = activity.MemoryCapacity
)

type Service interface {
	List(ctx context.Context, f model.LoanFilter) ([]model.Loan, error)
	Get(ctx context.Context, id int64) (*model.Loan, error)
	Create(ctx context.Context, l *model.Loan) error
	Update(ctx context.Context, l *model.Loan) error
	Return(ctx context.Context, id int64) (*model.Loan, error)
	Delete(ctx context.Context, id int64) error
	// MarkOverdue flips ACTIVE loans past their due date and reports how many changed.
	MarkOverdue(ctx context.Context) (int, error)
	Activity(ctx context.Context, limit int) ([]model.LoanEvent, error)
}

type service struct {
	r       loanrepo.Repo
	journal activity.Journal
	log     *slog.Logger
	now     func() time.Time
}

func New(r loanrepo.Repo, journal activity.Journal, log *slog.Logger) Service {
	if journal == nil {
		journal = activity.NewMemoryJournal()
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{r: r, journal: journal, log: log, now: time.Now}
}

func (s *service) today() model.Date { return model.NewDate(s.now().UTC()) }

func (s *service) List(ctx context.Context, f model.LoanFilter) ([]model.Loan, error) {
	if f.State != "" && !f.State.Valid() {
		return nil, apperr.New(apperr.ErrValidation, "validation error")
	}
	return s.r.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Loan, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) Create(ctx context.Context, l *model.Loan) error {
	if l.UserID <= 0 || l.BookID <= 0 || l.LoanDate.IsZero() || l.DueDate.IsZero() {
		return apperr.New(apperr.ErrMissingField, "missing field")
	}
	if l.State == "" {
		l.State = model.LoanActive
	}
	if l.State != model.LoanActive && l.State != model.LoanPending {
		return apperr.New(apperr.ErrValidation, "validation error")
	}
	l.ReturnedAt = nil

	req := requestFor(l)
	if d := EvaluateLoanRequest(req, nil); !d.Accepted {
		return rejection(d)
	}

	err := s.r.InTx(ctx, func(tx loanrepo.TxRepo) error {
		if err := tx.LockBook(ctx, l.BookID); err != nil {
			return err
		}
		existing, err := tx.ListByBook(ctx, l.BookID)
		if err != nil {
			return err
		}
		if d := EvaluateLoanRequest(req, existing); !d.Accepted {
			return rejection(d)
		}
		return tx.Insert(ctx, l)
	})
	if err != nil {
		return mapWriteErr(err)
	}

	s.record(ctx, l, model.LoanCreated)
	return nil
}

// Update replaces every field of the loan. Moving to RETURNED stamps
// returned_at; leaving it clears the stamp.
func (s *service) Update(ctx context.Context, l *model.Loan) error {
	if l.UserID <= 0 || l.BookID <= 0 || l.LoanDate.IsZero() || l.DueDate.IsZero() || l.State == "" {
		return apperr.New(apperr.ErrMissingField, "missing field")
	}
	if !l.State.Valid() {
		return apperr.New(apperr.ErrValidation, "validation error")
	}
	req := requestFor(l)
	if d := EvaluateLoanRequest(req, nil); !d.Accepted {
		return rejection(d)
	}

	action := model.LoanUpdated
	err := s.r.InTx(ctx, func(tx loanrepo.TxRepo) error {
		cur, err := tx.LockLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if err := tx.LockBook(ctx, l.BookID); err != nil {
			return err
		}

		if l.State.Open() {
			existing, err := tx.ListByBook(ctx, l.BookID)
			if err != nil {
				return err
			}
			others := existing[:0:0]
			for _, e := range existing {
				if e.ID != l.ID {
					others = append(others, e)
				}
			}
			if d := EvaluateLoanRequest(req, others); !d.Accepted {
				return rejection(d)
			}
			l.ReturnedAt = nil
		} else {
			switch {
			case l.ReturnedAt != nil:
			case cur.ReturnedAt != nil:
				l.ReturnedAt = cur.ReturnedAt
			default:
				today := s.today()
				l.ReturnedAt = &today
			}
			if cur.State.Open() {
				action = model.LoanMarkedReturn
			}
		}
		return tx.Update(ctx, l)
	})
	if err != nil {
		return mapWriteErr(err)
	}

	s.record(ctx, l, action)
	return nil
}

func (s *service) Return(ctx context.Context, id int64) (*model.Loan, error) {
	var out *model.Loan
	err := s.r.InTx(ctx, func(tx loanrepo.TxRepo) error {
		l, err := tx.LockLoan(ctx, id)
		if err != nil {
			return err
		}
		if !l.State.Open() {
			return apperr.New(apperr.ErrLoanNotOpen, "loan not open")
		}
		today := s.today()
		l.State = model.LoanReturned
		l.ReturnedAt = &today
		if err := tx.Update(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, out, model.LoanMarkedReturn)
	return out, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	l, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.record(ctx, l, model.LoanDeleted)
	return nil
}

func (s *service) MarkOverdue(ctx context.Context) (int, error) {
	changed, err := s.r.MarkOverdue(ctx, s.today())
	if err != nil {
		return 0, err
	}
	for i := range changed {
		s.record(ctx, &changed[i], model.LoanMarkedOverdue)
	}
	return len(changed), nil
}

func (s *service) Activity(ctx context.Context, limit int) ([]model.LoanEvent, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	return s.journal.Recent(ctx, limit)
}

// record appends to the journal. The loan tables are authoritative, so a
// journal failure is only logged.
func (s *service) record(ctx context.Context, l *model.Loan, action model.LoanAction) {
	ev := model.LoanEvent{
		LoanID:  l.ID,
		BookID:  l.BookID,
		UserID:  l.UserID,
		ActorID: jwtutil.ActorID(ctx),
		Action:  action,
		State:   l.State,
		At:      s.now().UTC(),
	}
	if err := s.journal.Record(ctx, ev); err != nil {
		s.log.Warn("loan journal write failed", "err", err, "loan_id", l.ID, "action", action)
	}
}

func requestFor(l *model.Loan) LoanRequest {
	return LoanRequest{
		BookID:   l.BookID,
		UserID:   l.UserID,
		LoanDate: l.LoanDate.Time,
		DueDate:  l.DueDate.Time,
	}
}

func rejection(d Decision) error {
	if d.Reason == ReasonInvalidDateRange {
		return apperr.New(apperr.ErrInvalidDateRange, string(d.Reason))
	}
	return apperr.New(apperr.ErrBookUnavailable, string(d.Reason))
}

// mapWriteErr turns constraint violations that slipped past the
// transaction into the same codes the admission check produces.
func mapWriteErr(err error) error {
	code, constraint, ok := apperr.PgViolation(err)
	if !ok {
		return err
	}
	switch {
	case constraint == "loans_one_open_per_book":
		return rejection(Decision{Reason: ReasonBookUnavailable})
	case constraint == "loans_date_range_check":
		return rejection(Decision{Reason: ReasonInvalidDateRange})
	case constraint == "loans_user_id_fkey":
		return apperr.New(apperr.ErrUserNotFound, "user not found")
	case constraint == "loans_book_id_fkey":
		return apperr.New(apperr.ErrBookNotFound, "book not found")
	case code == pgerrcode.CheckViolation:
		return apperr.New(apperr.ErrValidation, "validation error")
	}
	return err
}
