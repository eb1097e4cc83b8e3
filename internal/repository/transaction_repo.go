package repository

import (
	"context"
	"errors"
	"fmt"

	"cashflow_tracker/internal/model"
	"cashflow_tracker/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Columns of a listed transaction, in scan order. Amounts are read as text
// so the exact NUMERIC value reaches decimal.Decimal untouched.
const transactionColumns = `t.id, t.owner_id, t.description, t.amount::text, t.kind, t.occurred_on,
       t.category_id, c.label, t.created_at, t.updated_at`

const categoryJoin = `LEFT JOIN categories c ON c.id = t.category_id`

// TransactionRepository defines operations for transaction data. Every
// method is scoped by owner; no method can see another owner's rows.
type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	Update(ctx context.Context, t *model.Transaction) error
	Delete(ctx context.Context, id int64, ownerID int) error
	List(ctx context.Context, ownerID int, f query.Filter) ([]model.Transaction, error)
	Totals(ctx context.Context, ownerID int, f query.Filter) (model.Balance, error)
	Snapshot(ctx context.Context, ownerID int, f query.Filter) ([]model.Transaction, model.Balance, error)
	Periods(ctx context.Context, ownerID int) ([]model.Period, error)
}

type transactionRepository struct {
	db DB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func writeArgs(t *model.Transaction) pgx.NamedArgs {
	return pgx.NamedArgs{
		"owner_id":    t.OwnerID,
		"description": t.Description,
		"amount":      t.Amount.String(),
		"kind":        string(t.Kind),
		"occurred_on": t.OccurredOn,
		"category_id": t.CategoryID,
	}
}

// Create inserts t and fills in the store-assigned fields and category label.
func (r *transactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	sql := `WITH inserted AS (
	INSERT INTO transactions (owner_id, description, amount, kind, occurred_on, category_id)
	VALUES (@owner_id, @description, @amount, @kind, @occurred_on, @category_id)
	RETURNING *
)
SELECT ` + transactionColumns + ` FROM inserted t ` + categoryJoin

	created, err := scanTransaction(r.db.QueryRow(ctx, sql, writeArgs(t)))
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	*t = created
	return nil
}

// Update replaces the mutable fields of the transaction addressed by
// t.ID and t.OwnerID in a single statement.
func (r *transactionRepository) Update(ctx context.Context, t *model.Transaction) error {
	sql := `WITH updated AS (
	UPDATE transactions
	SET description = @description, amount = @amount, kind = @kind,
	    occurred_on = @occurred_on, category_id = @category_id, updated_at = NOW()
	WHERE id = @id AND owner_id = @owner_id
	RETURNING *
)
SELECT ` + transactionColumns + ` FROM updated t ` + categoryJoin

	args := writeArgs(t)
	args["id"] = t.ID

	updated, err := scanTransaction(r.db.QueryRow(ctx, sql, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if pgErrorCode(err) == pgForeignKeyViolation {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	*t = updated
	return nil
}

// Delete removes the transaction only if ownerID owns it.
func (r *transactionRepository) Delete(ctx context.Context, id int64, ownerID int) error {
	sql := `DELETE FROM transactions WHERE id = @id AND owner_id = @owner_id`
	cmdTag, err := r.db.Exec(ctx, sql, pgx.NamedArgs{"id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the owner's transactions matching f, newest first.
func (r *transactionRepository) List(ctx context.Context, ownerID int, f query.Filter) ([]model.Transaction, error) {
	return list(ctx, r.db, query.Build(ownerID, f))
}

// Totals sums income and expense in the store over the same predicates as List.
func (r *transactionRepository) Totals(ctx context.Context, ownerID int, f query.Filter) (model.Balance, error) {
	return totals(ctx, r.db, query.Build(ownerID, f))
}

// Snapshot runs List and Totals inside one read-only repeatable-read
// transaction so both observe the same data.
func (r *transactionRepository) Snapshot(ctx context.Context, ownerID int, f query.Filter) (rows []model.Transaction, balance model.Balance, err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, model.Balance{}, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	p := query.Build(ownerID, f)
	if rows, err = list(ctx, tx, p); err != nil {
		return nil, model.Balance{}, err
	}
	if balance, err = totals(ctx, tx, p); err != nil {
		return nil, model.Balance{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, model.Balance{}, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return rows, balance, nil
}

// Periods returns the distinct (year, month) pairs of the owner's
// transactions, years descending and months ascending within a year.
func (r *transactionRepository) Periods(ctx context.Context, ownerID int) ([]model.Period, error) {
	sql := `SELECT DISTINCT EXTRACT(YEAR FROM occurred_on)::int AS year, EXTRACT(MONTH FROM occurred_on)::int AS month
FROM transactions
WHERE owner_id = @owner_id
ORDER BY year DESC, month ASC`

	rows, err := r.db.Query(ctx, sql, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to query filter periods: %w", err)
	}
	defer rows.Close()

	periods := []model.Period{}
	for rows.Next() {
		var p model.Period
		if err := rows.Scan(&p.Year, &p.Month); err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		periods = append(periods, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", err)
	}
	return periods, nil
}

func list(ctx context.Context, q querier, p query.Predicates) ([]model.Transaction, error) {
	sql := `SELECT ` + transactionColumns + `
FROM transactions t ` + categoryJoin + `
` + p.Where() + `
` + query.NewestFirst

	rows, err := q.Query(ctx, sql, p.Args())
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func totals(ctx context.Context, q querier, p query.Predicates) (model.Balance, error) {
	sql := `SELECT
	COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'income'), 0)::text AS total_income,
	COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'expense'), 0)::text AS total_expense
FROM transactions t
` + p.Where()

	var incomeText, expenseText string
	if err := q.QueryRow(ctx, sql, p.Args()).Scan(&incomeText, &expenseText); err != nil {
		return model.Balance{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	income, err := decimal.NewFromString(incomeText)
	if err != nil {
		return model.Balance{}, fmt.Errorf("invalid income total %q: %w", incomeText, err)
	}
	expense, err := decimal.NewFromString(expenseText)
	if err != nil {
		return model.Balance{}, fmt.Errorf("invalid expense total %q: %w", expenseText, err)
	}
	return model.NewBalance(income, expense), nil
}

func scanTransaction(row pgx.Row) (model.Transaction, error) {
	var (
		t          model.Transaction
		amountText string
		kind       string
	)
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Description, &amountText, &kind, &t.OccurredOn,
		&t.CategoryID, &t.CategoryLabel, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Transaction{}, err
	}
	if t.Amount, err = decimal.NewFromString(amountText); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", amountText, err)
	}
	t.Kind = model.Kind(kind)
	return t, nil
}
