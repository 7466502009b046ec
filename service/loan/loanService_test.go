package loan

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	"github.com/MANUEL666GAMER/Biblioteca/repository/activity"
	loanrepo "github.com/MANUEL666GAMER/Biblioteca/repository/loan"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
	jwtutil "github.com/MANUEL666GAMER/Biblioteca/util/jwt"
)

// memRepo is an in-memory loans table that enforces the same constraints
// as the Postgres schema.
type memRepo struct {
	mu     sync.Mutex
	books  map[int64]bool
	users  map[int64]bool
	loans  map[int64]model.Loan
	nextID int64
}

var (
	_ loanrepo.Repo   = (*memRepo)(nil)
	_ loanrepo.TxRepo = (*memTx)(nil)
)

func newMemRepo(bookIDs, userIDs []int64) *memRepo {
	r := &memRepo{books: map[int64]bool{}, users: map[int64]bool{}, loans: map[int64]model.Loan{}}
	for _, id := range bookIDs {
		r.books[id] = true
	}
	for _, id := range userIDs {
		r.users[id] = true
	}
	return r
}

func (r *memRepo) sorted() []model.Loan {
	out := []model.Loan{}
	for _, l := range r.loans {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memRepo) List(ctx context.Context, f model.LoanFilter) ([]model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Loan{}
	for _, l := range r.sorted() {
		if (f.State == "" || l.State == f.State) && (f.BookID == 0 || l.BookID == f.BookID) && (f.UserID == 0 || l.UserID == f.UserID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memRepo) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.loans[id]
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	}
	return &l, nil
}

func (r *memRepo) Delete(ctx context.Context, id int64) (*model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.loans[id]
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	}
	delete(r.loans, id)
	return &l, nil
}

func (r *memRepo) MarkOverdue(ctx context.Context, today model.Date) ([]model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Loan{}
	for _, l := range r.sorted() {
		if l.State == model.LoanActive && today.AfterDate(l.DueDate) {
			l.State = model.LoanOverdue
			r.loans[l.ID] = l
			out = append(out, l)
		}
	}
	return out, nil
}

// InTx holds the lock for the whole callback and restores the table on error.
func (r *memRepo) InTx(ctx context.Context, fn func(tx loanrepo.TxRepo) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[int64]model.Loan, len(r.loans))
	for k, v := range r.loans {
		snapshot[k] = v
	}
	next := r.nextID
	if err := fn(&memTx{r: r}); err != nil {
		r.loans = snapshot
		r.nextID = next
		return err
	}
	return nil
}

type memTx struct{ r *memRepo }

func (t *memTx) LockBook(ctx context.Context, bookID int64) error {
	if !t.r.books[bookID] {
		return apperr.New(apperr.ErrBookNotFound, "book not found")
	}
	return nil
}

func (t *memTx) LockLoan(ctx context.Context, id int64) (*model.Loan, error) {
	l, ok := t.r.loans[id]
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "loan not found")
	}
	return &l, nil
}

func (t *memTx) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	out := []model.Loan{}
	for _, l := range t.r.sorted() {
		if l.BookID == bookID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (t *memTx) check(l *model.Loan) error {
	if !t.r.users[l.UserID] {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "loans_user_id_fkey"}
	}
	if !t.r.books[l.BookID] {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "loans_book_id_fkey"}
	}
	if l.State.Open() {
		for _, o := range t.r.loans {
			if o.ID != l.ID && o.BookID == l.BookID && o.State.Open() {
				return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "loans_one_open_per_book"}
			}
		}
	}
	return nil
}

func (t *memTx) Insert(ctx context.Context, l *model.Loan) error {
	if err := t.check(l); err != nil {
		return err
	}
	t.r.nextID++
	l.ID = t.r.nextID
	l.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.UpdatedAt = l.CreatedAt
	t.r.loans[l.ID] = *l
	return nil
}

func (t *memTx) Update(ctx context.Context, l *model.Loan) error {
	cur, ok := t.r.loans[l.ID]
	if !ok {
		return apperr.New(apperr.ErrNotFound, "loan not found")
	}
	if err := t.check(l); err != nil {
		return err
	}
	l.CreatedAt = cur.CreatedAt
	l.UpdatedAt = cur.UpdatedAt.Add(time.Second)
	t.r.loans[l.ID] = *l
	return nil
}

type failingJournal struct{ activity.MemoryJournal }

func (*failingJournal) Record(ctx context.Context, ev model.LoanEvent) error {
	return errors.New("clickhouse down")
}

func date(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(r loanrepo.Repo, j activity.Journal, today string) Service {
	svc := New(r, j, nil).(*service)
	now := date(today).Add(10 * time.Hour)
	svc.now = func() time.Time { return now }
	return svc
}

const bookA = 1

func newLoan(user int64, from, to string, st model.LoanState) *model.Loan {
	return &model.Loan{UserID: user, BookID: bookA, LoanDate: date(from), DueDate: date(to), State: st}
}

// --- end-to-end scenarios ---

func TestScenario_SecondLoanOfSameBookIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1, 2}), nil, "2025-02-01")

	first := newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)
	require.NoError(t, svc.Create(ctx, first))
	require.NotZero(t, first.ID)

	err := svc.Create(ctx, newLoan(2, "2025-02-05", "2025-02-20", model.LoanActive))
	require.Equal(t, apperr.ErrBookUnavailable, apperr.Code(err))
	require.EqualError(t, err, "book unavailable")

	rows, err := svc.List(ctx, model.LoanFilter{BookID: bookA})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestScenario_InvertedDatesAreRejected(t *testing.T) {
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1}), nil, "2025-03-01")

	err := svc.Create(context.Background(), newLoan(1, "2025-03-01", "2025-02-28", model.LoanActive))
	require.Equal(t, apperr.ErrInvalidDateRange, apperr.Code(err))
	require.EqualError(t, err, "invalid date range")

	err = svc.Create(context.Background(), newLoan(1, "2025-03-01", "2025-03-01", model.LoanActive))
	require.Equal(t, apperr.ErrInvalidDateRange, apperr.Code(err), "same-day due date is not a range")
}

func TestScenario_ReturnedLoanFreesTheBook(t *testing.T) {
	ctx := context.Background()
	j := activity.NewMemoryJournal()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1, 2}), j, "2025-02-20")

	first := newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)
	require.NoError(t, svc.Create(ctx, first))

	first.State = model.LoanReturned
	require.NoError(t, svc.Update(ctx, first))
	require.NotNil(t, first.ReturnedAt)
	require.Equal(t, "2025-02-20", first.ReturnedAt.String())

	second := newLoan(2, "2025-03-01", "2025-03-10", model.LoanActive)
	require.NoError(t, svc.Create(ctx, second))

	events, err := svc.Activity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	actions := []model.LoanAction{events[2].Action, events[1].Action, events[0].Action}
	require.Equal(t, []model.LoanAction{model.LoanCreated, model.LoanMarkedReturn, model.LoanCreated}, actions)
}

// --- create ---

func TestCreate_DefaultsAndInitialState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{1, 2, 3}, []int64{1}), nil, "2025-01-10")

	l := &model.Loan{UserID: 1, BookID: 1, LoanDate: date("2025-01-10"), DueDate: date("2025-01-20")}
	require.NoError(t, svc.Create(ctx, l))
	require.Equal(t, model.LoanActive, l.State)

	p := &model.Loan{UserID: 1, BookID: 2, LoanDate: date("2025-01-10"), DueDate: date("2025-01-20"), State: model.LoanPending}
	require.NoError(t, svc.Create(ctx, p))

	for _, st := range []model.LoanState{model.LoanReturned, model.LoanOverdue, "LOST"} {
		err := svc.Create(ctx, &model.Loan{UserID: 1, BookID: 3, LoanDate: date("2025-01-10"), DueDate: date("2025-01-20"), State: st})
		require.Equal(t, apperr.ErrValidation, apperr.Code(err), st)
	}
}

func TestCreate_PendingAndOverdueBlockTheBook(t *testing.T) {
	ctx := context.Background()
	r := newMemRepo([]int64{bookA}, []int64{1, 2})
	svc := newTestService(r, nil, "2025-03-01")

	require.NoError(t, svc.Create(ctx, newLoan(1, "2025-01-01", "2025-01-15", model.LoanPending)))
	err := svc.Create(ctx, newLoan(1, "2025-03-01", "2025-03-10", model.LoanActive))
	require.Equal(t, apperr.ErrBookUnavailable, apperr.Code(err), "same user is blocked too")

	n, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	require.Zero(t, n, "pending loans are not swept")

	l := r.loans[1]
	l.State = model.LoanOverdue
	r.loans[1] = l
	err = svc.Create(ctx, newLoan(2, "2025-03-01", "2025-03-10", model.LoanActive))
	require.Equal(t, apperr.ErrBookUnavailable, apperr.Code(err))
}

func TestCreate_MissingReferences(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1}), nil, "2025-01-01")

	err := svc.Create(ctx, &model.Loan{UserID: 1, BookID: 99, LoanDate: date("2025-01-01"), DueDate: date("2025-01-05")})
	require.Equal(t, apperr.ErrBookNotFound, apperr.Code(err))

	err = svc.Create(ctx, &model.Loan{UserID: 42, BookID: bookA, LoanDate: date("2025-01-01"), DueDate: date("2025-01-05")})
	require.Equal(t, apperr.ErrUserNotFound, apperr.Code(err))

	err = svc.Create(ctx, &model.Loan{BookID: bookA, LoanDate: date("2025-01-01"), DueDate: date("2025-01-05")})
	require.Equal(t, apperr.ErrMissingField, apperr.Code(err))
}

func TestCreate_ConcurrentRequestsAdmitOne(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1, 2, 3, 4, 5, 6, 7, 8}), nil, "2025-01-01")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Create(ctx, newLoan(int64(i+1), "2025-01-01", "2025-01-10", model.LoanActive))
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		require.Equal(t, apperr.ErrBookUnavailable, apperr.Code(err))
	}
	require.Equal(t, 1, accepted)
}

// --- update / return / delete ---

func TestUpdate_ExcludesItselfFromAvailability(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1}), nil, "2025-02-01")

	l := newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)
	require.NoError(t, svc.Create(ctx, l))

	l.DueDate = date("2025-02-28")
	require.NoError(t, svc.Update(ctx, l))

	got, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, "2025-02-28", got.DueDate.String())
}

func TestUpdate_RevalidatesDatesAndAvailability(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1, 2}), nil, "2025-02-01")

	first := newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)
	require.NoError(t, svc.Create(ctx, first))
	first.State = model.LoanReturned
	require.NoError(t, svc.Update(ctx, first))

	second := newLoan(2, "2025-02-16", "2025-02-20", model.LoanActive)
	require.NoError(t, svc.Create(ctx, second))

	// reopening the returned loan would double-book the copy
	first.State = model.LoanActive
	err := svc.Update(ctx, first)
	require.Equal(t, apperr.ErrBookUnavailable, apperr.Code(err))

	second.DueDate = date("2025-02-10")
	err = svc.Update(ctx, second)
	require.Equal(t, apperr.ErrInvalidDateRange, apperr.Code(err))

	missing := newLoan(1, "2025-02-01", "2025-02-05", model.LoanActive)
	missing.ID = 999
	require.Equal(t, apperr.ErrNotFound, apperr.Code(svc.Update(ctx, missing)))
}

func TestReturn(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1}), nil, "2025-02-10")

	l := newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)
	require.NoError(t, svc.Create(ctx, l))

	got, err := svc.Return(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, got.State)
	require.Equal(t, "2025-02-10", got.ReturnedAt.String())

	_, err = svc.Return(ctx, l.ID)
	require.Equal(t, apperr.ErrLoanNotOpen, apperr.Code(err))

	_, err = svc.Return(ctx, 404)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))
}

func TestGetIsIdempotentAndDeleteMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1}), nil, "2025-02-01")

	l := newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)
	require.NoError(t, svc.Create(ctx, l))

	a, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	b, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, a, b)

	require.NoError(t, svc.Delete(ctx, l.ID))
	require.Equal(t, apperr.ErrNotFound, apperr.Code(svc.Delete(ctx, l.ID)))
	_, err = svc.Get(ctx, l.ID)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))
}

// --- sweep / journal ---

func TestMarkOverdue(t *testing.T) {
	ctx := context.Background()
	j := activity.NewMemoryJournal()
	svc := newTestService(newMemRepo([]int64{1, 2, 3}, []int64{1}), j, "2025-02-01")

	require.NoError(t, svc.Create(ctx, &model.Loan{UserID: 1, BookID: 1, LoanDate: date("2025-01-01"), DueDate: date("2025-01-15")}))
	require.NoError(t, svc.Create(ctx, &model.Loan{UserID: 1, BookID: 2, LoanDate: date("2025-01-20"), DueDate: date("2025-02-01")}))
	require.NoError(t, svc.Create(ctx, &model.Loan{UserID: 1, BookID: 3, LoanDate: date("2025-01-20"), DueDate: date("2025-03-01")}))

	n, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n, "due today is not overdue yet")

	rows, err := svc.List(ctx, model.LoanFilter{State: model.LoanOverdue})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].BookID)

	events, err := svc.Activity(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanMarkedOverdue, events[0].Action)

	_, err = svc.List(ctx, model.LoanFilter{State: "LOST"})
	require.Equal(t, apperr.ErrValidation, apperr.Code(err))
}

func TestJournalRecordsActorAndSurvivesFailures(t *testing.T) {
	tok, err := jwtutil.Issue("s", 9, "lib@biblioteca.test", time.Hour)
	require.NoError(t, err)
	claims, err := jwtutil.Parse(tok, "s")
	require.NoError(t, err)
	ctx := jwtutil.NewContext(context.Background(), claims)

	j := activity.NewMemoryJournal()
	svc := newTestService(newMemRepo([]int64{bookA}, []int64{1}), j, "2025-02-01")
	require.NoError(t, svc.Create(ctx, newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)))

	events, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, int64(9), events[0].ActorID)
	require.Equal(t, model.LoanActive, events[0].State)

	broken := newTestService(newMemRepo([]int64{bookA}, []int64{1}), &failingJournal{}, "2025-02-01")
	require.NoError(t, broken.Create(ctx, newLoan(1, "2025-02-01", "2025-02-15", model.LoanActive)))
}

func TestActivityLimitIsClamped(t *testing.T) {
	ctx := context.Background()
	j := activity.NewMemoryJournal()
	for i := 0; i < MaxActivityLimit+10; i++ {
		require.NoError(t, j.Record(ctx, model.LoanEvent{LoanID: int64(i)}))
	}
	svc := newTestService(newMemRepo(nil, nil), j, "2025-01-01")

	got, err := svc.Activity(ctx, 10_000)
	require.NoError(t, err)
	require.Len(t, got, MaxActivityLimit)

	got, err = svc.Activity(ctx, -1)
	require.NoError(t, err)
	require.Len(t, got, DefaultActivityLimit)
}
