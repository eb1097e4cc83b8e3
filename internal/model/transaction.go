package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags a transaction as money coming in or going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// DateLayout is the wire format of OccurredOn.
const DateLayout = "2006-01-02"

// Transaction represents an income or expense record owned by one user.
// Amount is never negative; direction is carried by Kind.
type Transaction struct {
	ID            int64           `json:"id"`
	OwnerID       int             `json:"owner_id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          Kind            `json:"kind"`
	OccurredOn    time.Time       `json:"occurred_on"`
	CategoryID    *string         `json:"category_id,omitempty"`
	CategoryLabel *string         `json:"category,omitempty"` // display only, resolved by join
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TransactionRequest is the payload for both create and update; update is a
// full replacement of the mutable fields.
type TransactionRequest struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Kind        Kind             `json:"kind"`
	OccurredOn  string           `json:"occurred_on"` // YYYY-MM-DD
	CategoryID  *string          `json:"category_id"`
}
