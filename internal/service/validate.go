package service

import (
	"strings"
	"time"

	"cashflow_tracker/internal/model"

	"github.com/shopspring/decimal"
)

// maxAmount is the first value NUMERIC(14,2) cannot hold.
var maxAmount = decimal.New(1, 12)

// buildTransaction validates req and returns the record it describes.
// Nothing is written when it fails.
func buildTransaction(ownerID int, req model.TransactionRequest) (*model.Transaction, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, invalid("description", "is required")
	}

	if req.Amount == nil {
		return nil, invalid("amount", "is required")
	}
	amount := *req.Amount
	if amount.IsNegative() {
		return nil, invalid("amount", "must not be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, invalid("amount", "must have at most two decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return nil, invalid("amount", "is too large")
	}

	if !req.Kind.Valid() {
		return nil, invalid("kind", "must be income or expense")
	}

	if req.OccurredOn == "" {
		return nil, invalid("occurred_on", "is required")
	}
	occurredOn, err := time.Parse(model.DateLayout, req.OccurredOn)
	if err != nil {
		return nil, invalid("occurred_on", "must be a date in YYYY-MM-DD format")
	}

	var categoryID *string
	if req.Kind == model.KindExpense {
		if req.CategoryID == nil || strings.TrimSpace(*req.CategoryID) == "" {
			return nil, invalid("category_id", "is required for expenses")
		}
		id := strings.TrimSpace(*req.CategoryID)
		categoryID = &id
	}

	return &model.Transaction{
		OwnerID:     ownerID,
		Description: description,
		Amount:      amount,
		Kind:        req.Kind,
		OccurredOn:  occurredOn,
		CategoryID:  categoryID,
	}, nil
}
