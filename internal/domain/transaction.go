package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Default category labels applied when a document carries none.
const (
	DefaultExpenseCategory = "General"
	DefaultIncomeCategory  = "Income"
)

type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	AccountID   *string         `json:"accountId,omitempty"`
	Date        time.Time       `json:"date"`
}

// TransactionInput is the caller-supplied payload for creating a
// transaction. The occurrence date is assigned server-side at write time
// and is deliberately absent here.
type TransactionInput struct {
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	AccountID   *string         `json:"accountId,omitempty"`
}

// TransactionPatch carries a partial update; nil fields are left untouched.
type TransactionPatch struct {
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	AccountID   *string          `json:"accountId,omitempty"`
}

// Validate checks a creation payload before it is written.
func (in *TransactionInput) Validate() error {
	if in.Type != TransactionTypeIncome && in.Type != TransactionTypeExpense {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, in.Type)
	}
	if in.Description == "" {
		return ErrDescriptionEmpty
	}
	if len(in.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MaxDescriptionLength)
	}
	if in.Amount.IsNegative() {
		return ErrAmountNegative
	}
	return nil
}

// Fields returns the document fields for a creation payload, applying the
// category defaulting rule.
func (in *TransactionInput) Fields() map[string]any {
	category := in.Category
	if category == "" {
		if in.Type == TransactionTypeIncome {
			category = DefaultIncomeCategory
		} else {
			category = DefaultExpenseCategory
		}
	}
	fields := map[string]any{
		"type":        string(in.Type),
		"description": in.Description,
		"amount":      in.Amount.String(),
		"category":    category,
	}
	if in.AccountID != nil {
		fields["accountId"] = *in.AccountID
	}
	return fields
}

// Fields returns only the fields present in the patch.
func (p *TransactionPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Amount != nil {
		fields["amount"] = p.Amount.String()
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.AccountID != nil {
		fields["accountId"] = *p.AccountID
	}
	return fields
}

// TransactionFromDocument decodes and validates a raw document at the
// subscription boundary. Malformed documents are rejected, never admitted
// to the store.
func TransactionFromDocument(id string, data map[string]any) (*Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing transaction id", ErrInvalidDocument)
	}
	txType := TransactionType(stringField(data, "type"))
	if txType != TransactionTypeIncome && txType != TransactionTypeExpense {
		return nil, fmt.Errorf("%w: transaction %s has unknown type %q", ErrInvalidDocument, id, txType)
	}
	amount := decimalField(data, "amount")
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: transaction %s has negative amount", ErrInvalidDocument, id)
	}
	date, ok := timeField(data, "date")
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s has no occurrence date", ErrInvalidDocument, id)
	}

	category := stringField(data, "category")
	if category == "" {
		if txType == TransactionTypeIncome {
			category = DefaultIncomeCategory
		} else {
			category = DefaultExpenseCategory
		}
	}

	tx := &Transaction{
		ID:          id,
		Type:        txType,
		Description: stringField(data, "description"),
		Amount:      amount,
		Category:    category,
		Date:        date,
	}
	if accountID := stringField(data, "accountId"); accountID != "" {
		tx.AccountID = &accountID
	}
	return tx, nil
}
