package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/store"
)

func TestMonthOverMonthTrend(t *testing.T) {
	february := func(day int) time.Time {
		return time.Date(2026, time.February, day, 12, 0, 0, 0, time.UTC)
	}

	snap := store.Snapshot{
		Transactions: []*domain.Transaction{
			expense("t1", "Food", "200", marchDay(3)),
			expense("t2", "Transport", "80", marchDay(5)),
			expense("t3", "Food", "150", february(10)),
			// New this month: no prior value.
			expense("t4", "Hobbies", "40", marchDay(20)),
		},
	}

	got := MonthOverMonthTrend(snap, marchDay(1), 10)
	require.Len(t, got, 3)

	assert.Equal(t, "Food", got[0].Label)
	assert.True(t, got[0].Current.Equal(decimal.NewFromInt(200)))
	assert.True(t, got[0].Previous.Equal(decimal.NewFromInt(150)))

	assert.Equal(t, "Transport", got[1].Label)
	assert.True(t, got[1].Previous.IsZero())

	assert.Equal(t, "Hobbies", got[2].Label)
	assert.True(t, got[2].Previous.IsZero())
}

func TestMonthOverMonthTrend_TruncatesToTopN(t *testing.T) {
	snap := store.Snapshot{
		Transactions: []*domain.Transaction{
			expense("t1", "Food", "300", marchDay(1)),
			expense("t2", "Transport", "200", marchDay(2)),
			expense("t3", "Hobbies", "100", marchDay(3)),
		},
	}

	got := MonthOverMonthTrend(snap, marchDay(1), 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Food", got[0].Label)
	assert.Equal(t, "Transport", got[1].Label)

	assert.Nil(t, MonthOverMonthTrend(snap, marchDay(1), 0))
}

func TestMonthOverMonthTrend_JanuaryLooksAtPriorDecember(t *testing.T) {
	snap := store.Snapshot{
		Transactions: []*domain.Transaction{
			expense("t1", "Food", "100", time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)),
			expense("t2", "Food", "75", time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)),
		},
	}

	got := MonthOverMonthTrend(snap, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), 5)
	require.Len(t, got, 1)
	assert.True(t, got[0].Previous.Equal(decimal.NewFromInt(75)))
}
