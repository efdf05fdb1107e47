package insights

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/store"
	"github.com/nestfinance/nest-core/internal/util"
)

// TrendEntry pairs a category's spend in the reference month with its
// spend in the month before.
type TrendEntry struct {
	Label    string          `json:"label"`
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
}

// MonthOverMonthTrend returns the topN categories by reference-month
// expense sum, each paired with its prior-month sum (zero if the category
// did not exist then).
func MonthOverMonthTrend(snap store.Snapshot, reference time.Time, topN int) []TrendEntry {
	if topN <= 0 {
		return nil
	}

	current := sumExpensesByCategory(snap.Transactions, MonthRange(reference.Year(), reference.Month()))

	prevYear, prevMonth := util.PreviousMonth(reference.Year(), int(reference.Month()))
	previous := sumExpensesByCategory(snap.Transactions, MonthRange(prevYear, time.Month(prevMonth)))

	previousByLabel := make(map[string]decimal.Decimal, len(previous))
	for _, group := range previous {
		previousByLabel[group.Label] = group.Amount
	}

	if len(current) > topN {
		current = current[:topN]
	}

	entries := make([]TrendEntry, 0, len(current))
	for _, group := range current {
		prior, ok := previousByLabel[group.Label]
		if !ok {
			prior = decimal.Zero
		}
		entries = append(entries, TrendEntry{
			Label:    group.Label,
			Current:  group.Amount,
			Previous: prior,
		})
	}
	return entries
}
