// Package aggregate reduces a filtered transaction set to balances and
// breakdowns. All sums are exact decimals.
package aggregate

import (
	"sort"

	"cashflow_tracker/internal/model"

	"github.com/shopspring/decimal"
)

// Balance sums income and expense over rows.
func Balance(rows []model.Transaction) model.Balance {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range rows {
		switch t.Kind {
		case model.KindIncome:
			income = income.Add(t.Amount)
		case model.KindExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return model.NewBalance(income, expense)
}

// Breakdown groups expenses by resolved category label, largest first.
// Equal totals keep the order in which their label first appeared in rows.
func Breakdown(rows []model.Transaction) []model.CategoryTotal {
	out := []model.CategoryTotal{}
	index := make(map[string]int)
	for _, t := range rows {
		if t.Kind != model.KindExpense {
			continue
		}
		label := Label(t)
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, model.CategoryTotal{Label: label, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Total.GreaterThan(out[b].Total)
	})
	return out
}

// Label is the display label used to group t. A missing category, or one
// the join could not resolve, falls back to the uncategorized label.
func Label(t model.Transaction) string {
	if t.CategoryID == nil || t.CategoryLabel == nil || *t.CategoryLabel == "" {
		return model.UncategorizedLabel
	}
	return *t.CategoryLabel
}

// Monthly computes a balance per calendar month, oldest month first.
func Monthly(rows []model.Transaction) []model.MonthlyTotal {
	type key struct{ year, month int }
	type sums struct{ income, expense decimal.Decimal }

	buckets := make(map[key]*sums)
	for _, t := range rows {
		k := key{t.OccurredOn.Year(), int(t.OccurredOn.Month())}
		s, ok := buckets[k]
		if !ok {
			s = &sums{income: decimal.Zero, expense: decimal.Zero}
			buckets[k] = s
		}
		switch t.Kind {
		case model.KindIncome:
			s.income = s.income.Add(t.Amount)
		case model.KindExpense:
			s.expense = s.expense.Add(t.Amount)
		}
	}

	out := make([]model.MonthlyTotal, 0, len(buckets))
	for k, s := range buckets {
		out = append(out, model.MonthlyTotal{
			Year:    k.year,
			Month:   k.month,
			Balance: model.NewBalance(s.income, s.expense),
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Year != out[b].Year {
			return out[a].Year < out[b].Year
		}
		return out[a].Month < out[b].Month
	})
	return out
}

// Summarize builds the dashboard view over rows. The listing and every
// aggregate are derived from the same slice.
func Summarize(rows []model.Transaction) model.Summary {
	if rows == nil {
		rows = []model.Transaction{}
	}
	return model.Summary{
		Transactions: rows,
		Balance:      Balance(rows),
		Breakdown:    Breakdown(rows),
		Monthly:      Monthly(rows),
	}
}
