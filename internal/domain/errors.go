package domain

import "errors"

// Domain errors
var (
	ErrNoSession        = errors.New("no active session")
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrAmountNegative   = errors.New("amount must not be negative")
	ErrDescriptionEmpty = errors.New("description is required")
	ErrNameRequired     = errors.New("name is required")
	ErrCategoryRequired = errors.New("category is required")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxCategoryLength    = 100
)
