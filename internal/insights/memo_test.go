package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nestfinance/nest-core/internal/store"
)

func TestMemo_CachesByRevisionAndParams(t *testing.T) {
	computeCount := 0
	memo := NewMemo(func(snap store.Snapshot, topN int) int {
		computeCount++
		return len(snap.Transactions) + topN
	})

	snap := store.Snapshot{Revision: 1}

	assert.Equal(t, 3, memo.Get(snap, 3))
	assert.Equal(t, 3, memo.Get(snap, 3))
	assert.Equal(t, 1, computeCount, "same revision and params must hit the cache")

	// Parameter change recomputes.
	assert.Equal(t, 5, memo.Get(snap, 5))
	assert.Equal(t, 2, computeCount)

	// Revision change recomputes.
	snap.Revision = 2
	memo.Get(snap, 5)
	assert.Equal(t, 3, computeCount)

	// A single slot: switching params back recomputes again.
	memo.Get(snap, 3)
	assert.Equal(t, 4, computeCount)
}
