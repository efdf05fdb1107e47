package insights

import (
	"sync"

	"github.com/nestfinance/nest-core/internal/store"
)

// Memo caches the last result of a derived-view computation, keyed by the
// snapshot revision and the caller's parameters. It retains a single
// entry: dashboards re-query with the same parameters until the user
// changes a filter, so one slot is enough.
type Memo[P comparable, V any] struct {
	compute func(store.Snapshot, P) V

	mu       sync.Mutex
	valid    bool
	revision uint64
	params   P
	value    V
}

// NewMemo wraps a pure computation in a revision-keyed cache.
func NewMemo[P comparable, V any](compute func(store.Snapshot, P) V) *Memo[P, V] {
	return &Memo[P, V]{compute: compute}
}

// Get returns the cached value when neither the revision nor the
// parameters changed, recomputing otherwise.
func (m *Memo[P, V]) Get(snap store.Snapshot, params P) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.revision == snap.Revision && m.params == params {
		return m.value
	}

	m.value = m.compute(snap, params)
	m.revision = snap.Revision
	m.params = params
	m.valid = true
	return m.value
}
