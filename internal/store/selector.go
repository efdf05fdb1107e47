package store

import "sync"

// Selection is the contract presentation consumers read through: a
// memoized view over the store. The selector function is re-invoked only
// when the store's revision has changed, and the held value is replaced
// only when the equality function reports a difference, so downstream
// consumers re-render no more often than necessary.
type Selection[T any] struct {
	store *Store
	fn    func(Snapshot) T
	eq    func(a, b T) bool

	mu       sync.Mutex
	computed bool
	revision uint64
	value    T
}

// Select creates a memoized selection over the store. eq may be nil, in
// which case every recomputation replaces the held value (the analog of
// reference equality).
func Select[T any](s *Store, fn func(Snapshot) T, eq func(a, b T) bool) *Selection[T] {
	return &Selection[T]{store: s, fn: fn, eq: eq}
}

// Get returns the selection's current value, recomputing it only if the
// store's revision changed since the last call.
func (sel *Selection[T]) Get() T {
	snap := sel.store.Snapshot()

	sel.mu.Lock()
	defer sel.mu.Unlock()

	if sel.computed && snap.Revision == sel.revision {
		return sel.value
	}

	next := sel.fn(snap)
	sel.revision = snap.Revision
	if sel.computed && sel.eq != nil && sel.eq(next, sel.value) {
		// Unchanged under the caller's equality: keep the previous value
		// so consumers comparing identities see no difference.
		return sel.value
	}
	sel.value = next
	sel.computed = true
	return sel.value
}
