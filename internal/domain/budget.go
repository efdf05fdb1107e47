package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Budget is a monthly spending limit for a single category. Budgets are
// upserted by category; ID is empty on first creation.
type Budget struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

// BudgetInput is the caller-supplied upsert payload. When ID is set the
// payload merges into the existing budget, otherwise a new one is created.
type BudgetInput struct {
	ID       string          `json:"id,omitempty"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

// Validate checks an upsert payload before it is written.
func (in *BudgetInput) Validate() error {
	if in.Category == "" {
		return ErrCategoryRequired
	}
	if len(in.Category) > MaxCategoryLength {
		return fmt.Errorf("%w: category exceeds %d characters", ErrInvalidInput, MaxCategoryLength)
	}
	if in.Limit.IsNegative() {
		return fmt.Errorf("%w: budget limit must not be negative", ErrInvalidInput)
	}
	return nil
}

// Fields returns the document fields for an upsert payload.
func (in *BudgetInput) Fields() map[string]any {
	return map[string]any{
		"category": in.Category,
		"limit":    in.Limit.String(),
	}
}

// BudgetFromDocument decodes and validates a raw document at the
// subscription boundary.
func BudgetFromDocument(id string, data map[string]any) (*Budget, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing budget id", ErrInvalidDocument)
	}
	category := stringField(data, "category")
	if category == "" {
		return nil, fmt.Errorf("%w: budget %s has no category", ErrInvalidDocument, id)
	}
	limit := decimalField(data, "limit")
	if limit.IsNegative() {
		return nil, fmt.Errorf("%w: budget %s has negative limit", ErrInvalidDocument, id)
	}
	return &Budget{
		ID:       id,
		Category: category,
		Limit:    limit,
	}, nil
}
