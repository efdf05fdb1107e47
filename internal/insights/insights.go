// Package insights computes read-only aggregates over the collection
// store's snapshots. Every function is pure, tolerates empty or missing
// collections, and never mutates store state; memoization lives in Memo,
// keyed by the snapshot revision.
package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/store"
)

// CategoryAmount is a category label paired with a summed amount.
type CategoryAmount struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// SafeToSpend is the recurring baseline (income minus expenses) plus the
// net of in-range transaction activity.
func SafeToSpend(snap store.Snapshot, r DateRange) decimal.Decimal {
	total := decimal.Zero
	if snap.Profile != nil {
		total = snap.Profile.RecurringIncome.Sub(snap.Profile.RecurringExpenses)
	}
	for _, tx := range snap.Transactions {
		if !r.Contains(tx.Date) {
			continue
		}
		if tx.Type == domain.TransactionTypeIncome {
			total = total.Add(tx.Amount)
		} else {
			total = total.Sub(tx.Amount)
		}
	}
	return total
}

// NetWorth sums account balances, sign-flipping liabilities: balances are
// stored positive and the type tag carries the direction.
func NetWorth(snap store.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, account := range snap.Accounts {
		if account.Type == domain.AccountTypeLiability {
			total = total.Sub(account.Balance)
		} else {
			total = total.Add(account.Balance)
		}
	}
	return total
}

// BudgetProgress returns the percentage of the total budgeted limit spent
// in range, rounded half-up and capped at 100. A non-positive total limit
// yields 0.
func BudgetProgress(snap store.Snapshot, r DateRange) int {
	totalLimit := decimal.Zero
	for _, budget := range snap.Budgets {
		totalLimit = totalLimit.Add(budget.Limit)
	}
	if totalLimit.LessThanOrEqual(decimal.Zero) {
		return 0
	}

	spent := decimal.Zero
	for _, tx := range snap.Transactions {
		if tx.Type == domain.TransactionTypeExpense && r.Contains(tx.Date) {
			spent = spent.Add(tx.Amount)
		}
	}

	pct := spent.Mul(decimal.NewFromInt(100)).Div(totalLimit)
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return int(pct.Round(0).IntPart())
}

// CategoryBreakdown groups in-range expense transactions by category and
// returns the groups sorted by summed amount, descending. The grouped
// sums are invariant under permutation of the input; tie order follows
// first appearance.
func CategoryBreakdown(snap store.Snapshot, r DateRange) []CategoryAmount {
	return sumExpensesByCategory(snap.Transactions, r)
}

func sumExpensesByCategory(transactions []*domain.Transaction, r DateRange) []CategoryAmount {
	sums := make(map[string]decimal.Decimal)
	var order []string

	for _, tx := range transactions {
		if tx.Type != domain.TransactionTypeExpense || !r.Contains(tx.Date) {
			continue
		}
		label := tx.Category
		if label == "" {
			label = domain.DefaultExpenseCategory
		}
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		sums[label] = sums[label].Add(tx.Amount)
	}

	groups := make([]CategoryAmount, 0, len(order))
	for _, label := range order {
		groups = append(groups, CategoryAmount{Label: label, Amount: sums[label]})
	}
	sortByAmountDesc(groups)
	return groups
}

// sortByAmountDesc sorts descending by amount; the stable sort keeps
// first-seen order on ties.
func sortByAmountDesc(groups []CategoryAmount) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount.GreaterThan(groups[j].Amount)
	})
}

// TotalIncome sums in-range income transactions.
func TotalIncome(snap store.Snapshot, r DateRange) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range snap.Transactions {
		if tx.Type == domain.TransactionTypeIncome && r.Contains(tx.Date) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// TotalExpenses sums in-range expense transactions.
func TotalExpenses(snap store.Snapshot, r DateRange) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range snap.Transactions {
		if tx.Type == domain.TransactionTypeExpense && r.Contains(tx.Date) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}
