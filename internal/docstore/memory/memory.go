// Package memory provides an in-memory document store. It backs tests and
// local runs without a database; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/docstore"
)

// Store is an in-memory implementation of docstore.Store. It is safe for
// concurrent use. Snapshot deliveries per subscription are coalesced:
// when a listener falls behind, intermediate snapshots are dropped and
// only the latest full state is delivered.
type Store struct {
	mu           sync.Mutex
	collections  map[string]*collectionState
	nextListener int64
	closed       bool
}

type collectionState struct {
	docs      map[string]map[string]any
	created   map[string]time.Time
	order     []string
	listeners map[int64]*listener
}

type listener struct {
	ch   chan []docstore.Document
	done chan struct{}
	once sync.Once
}

// NewStore creates a new in-memory document store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collectionState),
	}
}

func collectionKey(userID, collection string) string {
	return userID + "/" + collection
}

func (s *Store) state(userID, collection string) *collectionState {
	key := collectionKey(userID, collection)
	state, ok := s.collections[key]
	if !ok {
		state = &collectionState{
			docs:      make(map[string]map[string]any),
			created:   make(map[string]time.Time),
			listeners: make(map[int64]*listener),
		}
		s.collections[key] = state
	}
	return state
}

// Subscribe implements docstore.Store.
func (s *Store) Subscribe(ctx context.Context, userID, collection string, onSnapshot docstore.SnapshotFunc, onError docstore.ErrorFunc) (docstore.CancelFunc, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, docstore.ErrClosed
	}

	state := s.state(userID, collection)
	s.nextListener++
	id := s.nextListener

	l := &listener{
		ch:   make(chan []docstore.Document, 1),
		done: make(chan struct{}),
	}
	state.listeners[id] = l

	// Queue the initial snapshot before releasing the lock so no change
	// can slip in between registration and first delivery.
	l.offer(state.snapshot())
	s.mu.Unlock()

	go func() {
		for {
			select {
			case docs := <-l.ch:
				onSnapshot(docs)
			case <-l.done:
				return
			case <-ctx.Done():
				if onError != nil {
					onError(ctx.Err())
				}
				return
			}
		}
	}()

	cancel := func() {
		s.mu.Lock()
		delete(state.listeners, id)
		s.mu.Unlock()
		l.once.Do(func() { close(l.done) })
	}
	return cancel, nil
}

// offer queues a snapshot, replacing any undelivered one (latest wins).
func (l *listener) offer(docs []docstore.Document) {
	for {
		select {
		case l.ch <- docs:
			return
		default:
			select {
			case <-l.ch:
			default:
			}
		}
	}
}

func (state *collectionState) snapshot() []docstore.Document {
	docs := make([]docstore.Document, 0, len(state.order))
	for _, id := range state.order {
		data := state.docs[id]
		copied := make(map[string]any, len(data))
		for k, v := range data {
			copied[k] = v
		}
		docs = append(docs, docstore.Document{
			ID:        id,
			Data:      copied,
			CreatedAt: state.created[id],
		})
	}
	return docs
}

func (state *collectionState) publish() {
	docs := state.snapshot()
	for _, l := range state.listeners {
		l.offer(docs)
	}
}

// Create implements docstore.Store.
func (s *Store) Create(ctx context.Context, userID, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", docstore.ErrClosed
	}

	state := s.state(userID, collection)
	id := uuid.NewString()
	now := time.Now().UTC()

	state.docs[id] = resolveFields(fields, now)
	state.created[id] = now
	state.order = append(state.order, id)
	state.publish()
	return id, nil
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return docstore.ErrClosed
	}

	state := s.state(userID, collection)
	doc, ok := state.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	now := time.Now().UTC()
	for k, v := range resolveFields(fields, now) {
		doc[k] = v
	}
	state.publish()
	return nil
}

// Set implements docstore.Store.
func (s *Store) Set(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return docstore.ErrClosed
	}

	state := s.state(userID, collection)
	now := time.Now().UTC()
	doc, ok := state.docs[id]
	if !ok {
		state.docs[id] = resolveFields(fields, now)
		state.created[id] = now
		state.order = append(state.order, id)
	} else {
		for k, v := range resolveFields(fields, now) {
			doc[k] = v
		}
	}
	state.publish()
	return nil
}

// Delete implements docstore.Store. Deleting an absent document is a no-op.
func (s *Store) Delete(ctx context.Context, userID, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return docstore.ErrClosed
	}

	state := s.state(userID, collection)
	if _, ok := state.docs[id]; !ok {
		return nil
	}
	delete(state.docs, id)
	delete(state.created, id)
	for i, existing := range state.order {
		if existing == id {
			state.order = append(state.order[:i], state.order[i+1:]...)
			break
		}
	}
	state.publish()
	return nil
}

// Increment implements docstore.Store. The addition happens under the
// store lock, so concurrent increments are applied in full.
func (s *Store) Increment(ctx context.Context, userID, collection, id, field string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return docstore.ErrClosed
	}

	state := s.state(userID, collection)
	doc, ok := state.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}

	current, err := fieldDecimal(doc[field])
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", collection, field, err)
	}
	doc[field] = current.Add(delta).String()
	state.publish()
	return nil
}

// Close stops all subscriptions and rejects further operations.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, state := range s.collections {
		for id, l := range state.listeners {
			delete(state.listeners, id)
			l.once.Do(func() { close(l.done) })
		}
	}
}

func resolveFields(fields map[string]any, now time.Time) map[string]any {
	resolved := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == docstore.ServerTimestamp {
			resolved[k] = now
			continue
		}
		resolved[k] = v
	}
	return resolved
}

func fieldDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case string:
		return decimal.NewFromString(n)
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	default:
		return decimal.Zero, fmt.Errorf("field is not numeric (%T)", v)
	}
}

// Ensure Store implements docstore.Store.
var _ docstore.Store = (*Store)(nil)
