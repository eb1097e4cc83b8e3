package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"cashflow_tracker/internal/aggregate"
	"cashflow_tracker/internal/model"
	"cashflow_tracker/internal/query"
	"cashflow_tracker/internal/repository"
)

// memTransactions is an in-memory TransactionRepository that applies the
// same filter semantics as the SQL predicates.
type memTransactions struct {
	rows       []model.Transaction
	labels     map[string]string
	nextID     int64
	err        error
	totalsSkew bool
	calls      int
}

func newMemTransactions() *memTransactions {
	return &memTransactions{labels: map[string]string{"c-food": "Food", "c-rent": "Rent"}}
}

func (m *memTransactions) resolve(t *model.Transaction) error {
	t.CategoryLabel = nil
	if t.CategoryID == nil {
		return nil
	}
	label, ok := m.labels[*t.CategoryID]
	if !ok {
		return repository.ErrUnknownCategory
	}
	t.CategoryLabel = &label
	return nil
}

func (m *memTransactions) Create(_ context.Context, t *model.Transaction) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	if err := m.resolve(t); err != nil {
		return err
	}
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	m.rows = append(m.rows, *t)
	return nil
}

func (m *memTransactions) Update(_ context.Context, t *model.Transaction) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	for i := range m.rows {
		if m.rows[i].ID == t.ID && m.rows[i].OwnerID == t.OwnerID {
			if err := m.resolve(t); err != nil {
				return err
			}
			t.CreatedAt = m.rows[i].CreatedAt
			t.UpdatedAt = time.Now().UTC()
			m.rows[i] = *t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memTransactions) Delete(_ context.Context, id int64, ownerID int) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].OwnerID == ownerID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func contains(set []int, v int) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (m *memTransactions) List(ctx context.Context, ownerID int, f query.Filter) ([]model.Transaction, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []model.Transaction{}
	for _, t := range m.rows {
		if t.OwnerID != ownerID ||
			!contains(f.Months, int(t.OccurredOn.Month())) ||
			!contains(f.Years, t.OccurredOn.Year()) {
			continue
		}
		if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Description != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Description)) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn) {
			return out[i].OccurredOn.After(out[j].OccurredOn)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memTransactions) Totals(ctx context.Context, ownerID int, f query.Filter) (model.Balance, error) {
	rows, err := m.List(ctx, ownerID, f)
	if err != nil {
		return model.Balance{}, err
	}
	return aggregate.Balance(rows), nil
}

func (m *memTransactions) Snapshot(ctx context.Context, ownerID int, f query.Filter) ([]model.Transaction, model.Balance, error) {
	rows, err := m.List(ctx, ownerID, f)
	if err != nil {
		return nil, model.Balance{}, err
	}
	balance := aggregate.Balance(rows)
	if m.totalsSkew {
		balance = model.NewBalance(balance.TotalIncome.Add(balance.TotalIncome), balance.TotalExpense)
	}
	return rows, balance, nil
}

func (m *memTransactions) Periods(_ context.Context, ownerID int) ([]model.Period, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	seen := map[model.Period]bool{}
	out := []model.Period{}
	for _, t := range m.rows {
		p := model.Period{Year: t.OccurredOn.Year(), Month: int(t.OccurredOn.Month())}
		if t.OwnerID == ownerID && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

type memUsers struct {
	users []*model.User
	err   error
	// deadlines records whether each call's context carried a deadline.
	deadlines []bool
}

func (m *memUsers) observe(ctx context.Context) {
	_, ok := ctx.Deadline()
	m.deadlines = append(m.deadlines, ok)
}

func (m *memUsers) Create(ctx context.Context, user *model.User) error {
	m.observe(ctx)
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = len(m.users) + 1
	user.CreatedAt = time.Now().UTC()
	m.users = append(m.users, user)
	return nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.observe(ctx)
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(ctx context.Context, id int) (*model.User, error) {
	m.observe(ctx)
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type stubCategories struct {
	categories []model.Category
	err        error
}

func (s stubCategories) List(context.Context) ([]model.Category, error) {
	return s.categories, s.err
}
