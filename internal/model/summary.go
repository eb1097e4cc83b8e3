package model

import "github.com/shopspring/decimal"

// UncategorizedLabel groups expenses with no (or an unresolvable) category.
const UncategorizedLabel = "Uncategorized"

// Category is a global label transactions may reference.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Balance holds the totals of a filtered transaction set.
// Net is always TotalIncome - TotalExpense.
type Balance struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
}

// NewBalance derives Net from the two totals.
func NewBalance(income, expense decimal.Decimal) Balance {
	return Balance{
		TotalIncome:  income,
		TotalExpense: expense,
		Net:          income.Sub(expense),
	}
}

// CategoryTotal is one entry of the expense breakdown.
type CategoryTotal struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// MonthlyTotal is the income/expense balance of one calendar month.
type MonthlyTotal struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Balance
}

// Period is a distinct (year, month) pair present in a user's history.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Summary is the dashboard view: listing and aggregates over the same rows.
type Summary struct {
	Transactions []Transaction   `json:"transactions"`
	Balance      Balance         `json:"balance"`
	Breakdown    []CategoryTotal `json:"breakdown"`
	Monthly      []MonthlyTotal  `json:"monthly"`
}
