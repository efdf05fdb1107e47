package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
)

// Account is a manually tracked balance. Liability balances are stored
// positive and sign-flipped by the net-worth view; the type tag is the
// single source of truth for direction.
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Type    AccountType     `json:"type"`
}

// AccountInput is the caller-supplied upsert payload. When ID is set the
// payload merges into the existing account.
type AccountInput struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Type    AccountType     `json:"type"`
}

// Validate checks an upsert payload before it is written.
func (in *AccountInput) Validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.Type != AccountTypeAsset && in.Type != AccountTypeLiability {
		return fmt.Errorf("%w: unknown account type %q", ErrInvalidInput, in.Type)
	}
	return nil
}

// Fields returns the document fields for an upsert payload.
func (in *AccountInput) Fields() map[string]any {
	return map[string]any{
		"name":    in.Name,
		"balance": in.Balance.String(),
		"type":    string(in.Type),
	}
}

// AccountFromDocument decodes and validates a raw document at the
// subscription boundary. A missing or unknown type tag defaults to asset
// rather than rejecting the document, since older documents predate the
// tag.
func AccountFromDocument(id string, data map[string]any) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidDocument)
	}
	name := stringField(data, "name")
	if name == "" {
		return nil, fmt.Errorf("%w: account %s has no name", ErrInvalidDocument, id)
	}
	accountType := AccountType(stringField(data, "type"))
	if accountType != AccountTypeAsset && accountType != AccountTypeLiability {
		accountType = AccountTypeAsset
	}
	return &Account{
		ID:      id,
		Name:    name,
		Balance: decimalField(data, "balance"),
		Type:    accountType,
	}, nil
}
