package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"cashflow_tracker/internal/aggregate"
	"cashflow_tracker/internal/export"
	"cashflow_tracker/internal/log"
	"cashflow_tracker/internal/model"
	"cashflow_tracker/internal/query"
	"cashflow_tracker/internal/repository"
)

// TransactionService defines the owner-scoped transaction use cases
type TransactionService interface {
	Create(ctx context.Context, ownerID int, req model.TransactionRequest) (*model.Transaction, error)
	Update(ctx context.Context, id int64, ownerID int, req model.TransactionRequest) (*model.Transaction, error)
	Delete(ctx context.Context, id int64, ownerID int) error
	List(ctx context.Context, ownerID int, p query.Params) ([]model.Transaction, error)
	Balance(ctx context.Context, ownerID int, p query.Params) (model.Balance, error)
	Breakdown(ctx context.Context, ownerID int, p query.Params) ([]model.CategoryTotal, error)
	Summary(ctx context.Context, ownerID int, p query.Params) (*model.Summary, error)
	FilterOptions(ctx context.Context, ownerID int) ([]model.Period, error)
	Export(ctx context.Context, ownerID int, p query.Params, format export.Format) (*bytes.Buffer, error)
}

type transactionService struct {
	repo    repository.TransactionRepository
	timeout time.Duration
	logger  *log.Logger
}

// NewTransactionService creates a new TransactionService. Every store call
// is bounded by timeout when it is positive.
func NewTransactionService(repo repository.TransactionRepository, timeout time.Duration, logger *log.Logger) TransactionService {
	return &transactionService{
		repo:    repo,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentLedger),
	}
}

// fail translates a repository error into the service taxonomy, logging
// anything that is not the caller's fault.
func (s *transactionService) fail(ctx context.Context, op string, ownerID int, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTransactionNotFound
	case errors.Is(err, repository.ErrUnknownCategory):
		return invalid("category_id", "unknown category")
	}
	fields := log.NewFields().
		WithRequestID(log.RequestIDFrom(ctx)).
		WithOwner(ownerID).
		WithOperation(op).
		WithError(err)
	s.logger.ErrorContext(ctx, "Transaction store call failed", fields.ToSlice()...)
	return unavailable(err)
}

func parseFilter(p query.Params) (query.Filter, error) {
	f, err := query.ParseFilter(p)
	if err != nil {
		return query.Filter{}, &ValidationError{Message: err.Error(), Err: err}
	}
	return f, nil
}

func (s *transactionService) Create(ctx context.Context, ownerID int, req model.TransactionRequest) (*model.Transaction, error) {
	t, err := buildTransaction(ownerID, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, s.fail(ctx, log.OpCreate, ownerID, err)
	}
	return t, nil
}

// Update replaces every mutable field of the owner's transaction id.
func (s *transactionService) Update(ctx context.Context, id int64, ownerID int, req model.TransactionRequest) (*model.Transaction, error) {
	t, err := buildTransaction(ownerID, req)
	if err != nil {
		return nil, err
	}
	t.ID = id

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, s.fail(ctx, log.OpUpdate, ownerID, err)
	}
	return t, nil
}

func (s *transactionService) Delete(ctx context.Context, id int64, ownerID int) error {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return s.fail(ctx, log.OpDelete, ownerID, err)
	}
	return nil
}

func (s *transactionService) List(ctx context.Context, ownerID int, p query.Params) ([]model.Transaction, error) {
	f, err := parseFilter(p)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	rows, err := s.repo.List(ctx, ownerID, f)
	if err != nil {
		return nil, s.fail(ctx, log.OpList, ownerID, err)
	}
	return rows, nil
}

// Balance sums in the store over the same predicates List uses.
func (s *transactionService) Balance(ctx context.Context, ownerID int, p query.Params) (model.Balance, error) {
	f, err := parseFilter(p)
	if err != nil {
		return model.Balance{}, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	balance, err := s.repo.Totals(ctx, ownerID, f)
	if err != nil {
		return model.Balance{}, s.fail(ctx, log.OpBalance, ownerID, err)
	}
	return balance, nil
}

func (s *transactionService) Breakdown(ctx context.Context, ownerID int, p query.Params) ([]model.CategoryTotal, error) {
	rows, err := s.List(ctx, ownerID, p)
	if err != nil {
		return nil, err
	}
	return aggregate.Breakdown(rows), nil
}

// Summary reads the listing and the store totals from one snapshot and
// derives every aggregate from the listed rows.
func (s *transactionService) Summary(ctx context.Context, ownerID int, p query.Params) (*model.Summary, error) {
	f, err := parseFilter(p)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	rows, stored, err := s.repo.Snapshot(ctx, ownerID, f)
	if err != nil {
		return nil, s.fail(ctx, log.OpSummary, ownerID, err)
	}

	summary := aggregate.Summarize(rows)
	if !sameBalance(summary.Balance, stored) {
		// Both sides read the same snapshot, so a mismatch is a defect.
		s.logger.ErrorContext(ctx, "Listing and store totals disagree",
			log.FieldRequestID, log.RequestIDFrom(ctx),
			log.FieldOwnerID, ownerID,
			"listed_net", summary.Balance.Net.String(),
			"stored_net", stored.Net.String())
	}
	return &summary, nil
}

func sameBalance(a, b model.Balance) bool {
	return a.TotalIncome.Equal(b.TotalIncome) && a.TotalExpense.Equal(b.TotalExpense) && a.Net.Equal(b.Net)
}

func (s *transactionService) FilterOptions(ctx context.Context, ownerID int) ([]model.Period, error) {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	periods, err := s.repo.Periods(ctx, ownerID)
	if err != nil {
		return nil, s.fail(ctx, log.OpOptions, ownerID, err)
	}
	return periods, nil
}

// Export renders the filtered listing, newest first, in format.
func (s *transactionService) Export(ctx context.Context, ownerID int, p query.Params, format export.Format) (*bytes.Buffer, error) {
	rows, err := s.List(ctx, ownerID, p)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	if err := export.Write(buffer, format, rows); err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return nil, &ValidationError{Field: "format", Message: err.Error(), Err: err}
		}
		return nil, err
	}
	return buffer, nil
}
