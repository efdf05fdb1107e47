package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalFromDocument(t *testing.T) {
	goal, err := GoalFromDocument("g1", map[string]any{
		"name":          "Vacation",
		"targetAmount":  "2000",
		"currentAmount": "350",
		"isDebt":        false,
		"dueDate":       "2026-12-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "Vacation", goal.Name)
	assert.True(t, goal.CurrentAmount.Equal(decimal.NewFromInt(350)))
	require.NotNil(t, goal.DueDate)
	assert.Equal(t, 2026, goal.DueDate.Year())

	// Debt paydown goals may run negative.
	debt, err := GoalFromDocument("g2", map[string]any{
		"name":          "Car loan",
		"targetAmount":  "0",
		"currentAmount": "-4500",
		"isDebt":        true,
	})
	require.NoError(t, err)
	assert.True(t, debt.IsDebt)
	assert.True(t, debt.CurrentAmount.IsNegative())

	_, err = GoalFromDocument("g3", map[string]any{"targetAmount": "100"})
	assert.ErrorIs(t, err, ErrInvalidDocument, "name is mandatory")

	_, err = GoalFromDocument("g4", map[string]any{"name": "x", "targetAmount": "-1"})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestBudgetFromDocument(t *testing.T) {
	budget, err := BudgetFromDocument("b1", map[string]any{"category": "Food", "limit": "300"})
	require.NoError(t, err)
	assert.Equal(t, "Food", budget.Category)
	assert.True(t, budget.Limit.Equal(decimal.NewFromInt(300)))

	_, err = BudgetFromDocument("b2", map[string]any{"limit": "300"})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = BudgetFromDocument("b3", map[string]any{"category": "Food", "limit": "-1"})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestAccountFromDocument_DefaultsUnknownTypeToAsset(t *testing.T) {
	account, err := AccountFromDocument("a1", map[string]any{
		"name":    "Checking",
		"balance": "1200",
	})
	require.NoError(t, err)
	assert.Equal(t, AccountTypeAsset, account.Type)

	liability, err := AccountFromDocument("a2", map[string]any{
		"name":    "Credit Card",
		"balance": "900",
		"type":    "liability",
	})
	require.NoError(t, err)
	assert.Equal(t, AccountTypeLiability, liability.Type)

	_, err = AccountFromDocument("a3", map[string]any{"balance": "10"})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestProfileFromDocument_ToleratesAnyShape(t *testing.T) {
	profile := ProfileFromDocument(map[string]any{})
	assert.True(t, profile.RecurringIncome.IsZero())
	assert.Equal(t, PlanTierFree, profile.PlanTier)

	profile = ProfileFromDocument(map[string]any{
		"recurringIncome": "2500",
		"planTier":        "premium",
	})
	assert.True(t, profile.RecurringIncome.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, PlanTierPremium, profile.PlanTier)

	// Unknown tiers normalize to free.
	profile = ProfileFromDocument(map[string]any{"planTier": "enterprise"})
	assert.Equal(t, PlanTierFree, profile.PlanTier)
}
