// Package docstore defines the document-store collaborator consumed by the
// collection store: per-user named collections of schemaless documents with
// full-snapshot subscriptions and an atomic numeric increment primitive.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Collection names owned by the collection store.
const (
	CollectionTransactions = "transactions"
	CollectionGoals        = "goals"
	CollectionBudgets      = "budgets"
	CollectionAccounts     = "accounts"
	CollectionProfiles     = "profiles"
)

// Store errors
var (
	ErrNotFound = errors.New("document not found")
	ErrClosed   = errors.New("document store is closed")
)

// Document is a raw schemaless document as delivered by a subscription.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
}

// ServerTimestamp is a sentinel field value resolved to the write time by
// the store implementation, so callers never stamp dates themselves.
var ServerTimestamp = serverTimestamp{}

type serverTimestamp struct{}

// SnapshotFunc receives the full current contents of a collection. It is
// invoked once with the initial state and again after every change;
// deliveries for one subscription never overlap.
type SnapshotFunc func(docs []Document)

// ErrorFunc receives a terminal subscription failure. After it fires the
// subscription delivers no further snapshots.
type ErrorFunc func(err error)

// CancelFunc stops a subscription. Safe to call more than once.
type CancelFunc func()

// Store is the document-store collaborator contract.
type Store interface {
	// Subscribe starts a full-snapshot subscription for one user's
	// collection. The initial snapshot is delivered asynchronously.
	Subscribe(ctx context.Context, userID, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (CancelFunc, error)

	// Create inserts a new document with a store-assigned identifier,
	// resolving any ServerTimestamp field values, and returns the
	// identifier.
	Create(ctx context.Context, userID, collection string, fields map[string]any) (string, error)

	// Update merges fields into an existing document. Returns ErrNotFound
	// if the document does not exist.
	Update(ctx context.Context, userID, collection, id string, fields map[string]any) error

	// Set merges fields into the document with the given identifier,
	// creating it if absent.
	Set(ctx context.Context, userID, collection, id string, fields map[string]any) error

	// Delete removes a document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, userID, collection, id string) error

	// Increment atomically adds delta to a numeric field. Concurrent
	// increments from multiple sessions must all be reflected; a
	// read-modify-write implementation is not acceptable.
	Increment(ctx context.Context, userID, collection, id, field string, delta decimal.Decimal) error
}
