package insights

import (
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/store"
)

// WaterfallStepKind tags how a step moves the running balance.
type WaterfallStepKind string

const (
	WaterfallStepIncome  WaterfallStepKind = "income"
	WaterfallStepExpense WaterfallStepKind = "expense"
	WaterfallStepNet     WaterfallStepKind = "net"
)

// WaterfallStep is one bar of the cash-flow waterfall: its label, the
// amount it moves the balance by, and the running values before and after.
type WaterfallStep struct {
	Label  string            `json:"label"`
	Kind   WaterfallStepKind `json:"kind"`
	Amount decimal.Decimal   `json:"amount"`
	Start  decimal.Decimal   `json:"start"`
	End    decimal.Decimal   `json:"end"`
}

// RemainderLabel names the bucket holding expenses outside the top
// categories.
const RemainderLabel = "Other"

// DefaultWaterfallCategories caps how many expense categories get their
// own step.
const DefaultWaterfallCategories = 4

// CashFlowWaterfall builds the running-balance sequence: start at zero,
// add income, subtract each category in the caller-provided order,
// subtract the remainder (omitted entirely when zero), then append a
// final net step equal to the running total.
func CashFlowWaterfall(totalIncome decimal.Decimal, categories []CategoryAmount, remainder decimal.Decimal) []WaterfallStep {
	steps := make([]WaterfallStep, 0, len(categories)+3)
	running := decimal.Zero

	steps = append(steps, WaterfallStep{
		Label:  "Income",
		Kind:   WaterfallStepIncome,
		Amount: totalIncome,
		Start:  running,
		End:    running.Add(totalIncome),
	})
	running = running.Add(totalIncome)

	for _, category := range categories {
		next := running.Sub(category.Amount)
		steps = append(steps, WaterfallStep{
			Label:  category.Label,
			Kind:   WaterfallStepExpense,
			Amount: category.Amount,
			Start:  running,
			End:    next,
		})
		running = next
	}

	if !remainder.IsZero() {
		next := running.Sub(remainder)
		steps = append(steps, WaterfallStep{
			Label:  RemainderLabel,
			Kind:   WaterfallStepExpense,
			Amount: remainder,
			Start:  running,
			End:    next,
		})
		running = next
	}

	steps = append(steps, WaterfallStep{
		Label:  "Net",
		Kind:   WaterfallStepNet,
		Amount: running,
		Start:  decimal.Zero,
		End:    running,
	})
	return steps
}

// Waterfall derives the full cash-flow waterfall for a snapshot and date
// range, capping distinct categories at maxCategories and folding the
// rest into the remainder bucket.
func Waterfall(snap store.Snapshot, r DateRange, maxCategories int) []WaterfallStep {
	if maxCategories <= 0 {
		maxCategories = DefaultWaterfallCategories
	}

	income := TotalIncome(snap, r)
	groups := CategoryBreakdown(snap, r)

	top := groups
	remainder := decimal.Zero
	if len(groups) > maxCategories {
		top = groups[:maxCategories]
		for _, group := range groups[maxCategories:] {
			remainder = remainder.Add(group.Amount)
		}
	}
	return CashFlowWaterfall(income, top, remainder)
}
