package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target. CurrentAmount may run negative when the goal
// tracks a debt being paid down.
type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	IsDebt        bool            `json:"isDebt,omitempty"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
}

// GoalInput is the caller-supplied payload for creating a goal.
type GoalInput struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	IsDebt        bool            `json:"isDebt,omitempty"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
}

// Validate checks a creation payload before it is written.
func (in *GoalInput) Validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.TargetAmount.IsNegative() {
		return fmt.Errorf("%w: target amount must not be negative", ErrInvalidInput)
	}
	return nil
}

// Fields returns the document fields for a creation payload.
func (in *GoalInput) Fields() map[string]any {
	fields := map[string]any{
		"name":          in.Name,
		"targetAmount":  in.TargetAmount.String(),
		"currentAmount": in.CurrentAmount.String(),
		"isDebt":        in.IsDebt,
	}
	if in.DueDate != nil {
		fields["dueDate"] = in.DueDate.UTC().Format(time.RFC3339Nano)
	}
	return fields
}

// GoalFromDocument decodes and validates a raw document at the
// subscription boundary.
func GoalFromDocument(id string, data map[string]any) (*Goal, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing goal id", ErrInvalidDocument)
	}
	name := stringField(data, "name")
	if name == "" {
		return nil, fmt.Errorf("%w: goal %s has no name", ErrInvalidDocument, id)
	}
	target := decimalField(data, "targetAmount")
	if target.IsNegative() {
		return nil, fmt.Errorf("%w: goal %s has negative target", ErrInvalidDocument, id)
	}

	goal := &Goal{
		ID:            id,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: decimalField(data, "currentAmount"),
		IsDebt:        boolField(data, "isDebt"),
	}
	if due, ok := timeField(data, "dueDate"); ok {
		goal.DueDate = &due
	}
	return goal, nil
}
