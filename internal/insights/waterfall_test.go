package insights

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/store"
)

func TestCashFlowWaterfall_Sequencing(t *testing.T) {
	steps := CashFlowWaterfall(
		decimal.NewFromInt(1000),
		[]CategoryAmount{
			{Label: "Food", Amount: decimal.NewFromInt(300)},
			{Label: "Transport", Amount: decimal.NewFromInt(100)},
		},
		decimal.NewFromInt(50),
	)

	labels := make([]string, len(steps))
	for i, step := range steps {
		labels[i] = step.Label
	}
	assert.Equal(t, []string{"Income", "Food", "Transport", RemainderLabel, "Net"}, labels)

	// Every step starts where the previous one ended, and the net step
	// restates the running total from zero.
	for i := 1; i < len(steps)-1; i++ {
		assert.True(t, steps[i].Start.Equal(steps[i-1].End), "step %d start", i)
	}
	net := steps[len(steps)-1]
	assert.Equal(t, WaterfallStepNet, net.Kind)
	assert.True(t, net.Start.IsZero())
	assert.True(t, net.End.Equal(decimal.NewFromInt(550)))
	assert.True(t, net.Amount.Equal(decimal.NewFromInt(550)))
}

func TestCashFlowWaterfall_ZeroRemainderIsOmitted(t *testing.T) {
	steps := CashFlowWaterfall(
		decimal.NewFromInt(500),
		[]CategoryAmount{{Label: "Food", Amount: decimal.NewFromInt(200)}},
		decimal.Zero,
	)

	for _, step := range steps {
		assert.NotEqual(t, RemainderLabel, step.Label)
	}
	require.Len(t, steps, 3)
}

func TestWaterfall_FoldsExcessCategoriesIntoRemainder(t *testing.T) {
	snap := store.Snapshot{
		Transactions: []*domain.Transaction{
			income("t0", "1000", marchDay(1)),
			expense("t1", "Food", "400", marchDay(2)),
			expense("t2", "Transport", "300", marchDay(3)),
			expense("t3", "Hobbies", "200", marchDay(4)),
			expense("t4", "Misc", "100", marchDay(5)),
		},
	}

	steps := Waterfall(snap, march, 2)
	require.Len(t, steps, 5) // income, two categories, remainder, net

	assert.Equal(t, "Food", steps[1].Label)
	assert.Equal(t, "Transport", steps[2].Label)
	assert.Equal(t, RemainderLabel, steps[3].Label)
	assert.True(t, steps[3].Amount.Equal(decimal.NewFromInt(300)))
	assert.True(t, steps[4].End.IsZero(), "1000 income minus 1000 expenses nets to zero")
}
