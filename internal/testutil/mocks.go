// Package testutil provides hand-written fakes shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/docstore"
)

// Subscription is one registered subscription on the scripted store. Tests
// deliver snapshots and errors through it explicitly.
type Subscription struct {
	UserID     string
	Collection string
	OnSnapshot docstore.SnapshotFunc
	OnError    docstore.ErrorFunc

	mu        sync.Mutex
	cancelled bool
}

// Cancelled reports whether the subscription's cancel func has been called.
func (s *Subscription) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Deliver pushes a snapshot through the subscription unless it was
// cancelled, mirroring how the real stores deliver asynchronously after
// Subscribe returns.
func (s *Subscription) Deliver(docs []docstore.Document) {
	s.mu.Lock()
	cancelled := s.cancelled
	s.mu.Unlock()
	if !cancelled {
		s.OnSnapshot(docs)
	}
}

// Fail pushes a terminal error through the subscription.
func (s *Subscription) Fail(err error) {
	s.mu.Lock()
	cancelled := s.cancelled
	s.mu.Unlock()
	if !cancelled {
		s.OnError(err)
	}
}

// MutationCall records one write against the scripted store.
type MutationCall struct {
	Op         string // create, update, set, delete, increment
	UserID     string
	Collection string
	ID         string
	Fields     map[string]any
	Field      string
	Delta      decimal.Decimal
}

// ScriptedDocStore is a docstore.Store fake where nothing happens until
// the test delivers it: subscriptions are recorded, never auto-fed, and
// every mutation is captured for inspection.
type ScriptedDocStore struct {
	mu    sync.Mutex
	subs  []*Subscription
	calls []MutationCall

	// SubscribeErr, when set for a collection, makes Subscribe fail
	// synchronously for it.
	SubscribeErr map[string]error

	// CreateFn, when set, overrides the default uuid-returning Create.
	CreateFn func(userID, collection string, fields map[string]any) (string, error)
}

// NewScriptedDocStore creates an empty scripted store.
func NewScriptedDocStore() *ScriptedDocStore {
	return &ScriptedDocStore{SubscribeErr: make(map[string]error)}
}

// Subscribe records the subscription. The initial snapshot is NOT
// delivered automatically; use Deliver on the returned subscription.
func (m *ScriptedDocStore) Subscribe(ctx context.Context, userID, collection string, onSnapshot docstore.SnapshotFunc, onError docstore.ErrorFunc) (docstore.CancelFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.SubscribeErr[collection]; err != nil {
		return nil, err
	}

	sub := &Subscription{
		UserID:     userID,
		Collection: collection,
		OnSnapshot: onSnapshot,
		OnError:    onError,
	}
	m.subs = append(m.subs, sub)

	return func() {
		sub.mu.Lock()
		sub.cancelled = true
		sub.mu.Unlock()
	}, nil
}

// Create records the call and returns a fresh identifier.
func (m *ScriptedDocStore) Create(ctx context.Context, userID, collection string, fields map[string]any) (string, error) {
	m.record(MutationCall{Op: "create", UserID: userID, Collection: collection, Fields: fields})
	if m.CreateFn != nil {
		return m.CreateFn(userID, collection, fields)
	}
	return uuid.NewString(), nil
}

// Update records the call.
func (m *ScriptedDocStore) Update(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	m.record(MutationCall{Op: "update", UserID: userID, Collection: collection, ID: id, Fields: fields})
	return nil
}

// Set records the call.
func (m *ScriptedDocStore) Set(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	m.record(MutationCall{Op: "set", UserID: userID, Collection: collection, ID: id, Fields: fields})
	return nil
}

// Delete records the call.
func (m *ScriptedDocStore) Delete(ctx context.Context, userID, collection, id string) error {
	m.record(MutationCall{Op: "delete", UserID: userID, Collection: collection, ID: id})
	return nil
}

// Increment records the call.
func (m *ScriptedDocStore) Increment(ctx context.Context, userID, collection, id, field string, delta decimal.Decimal) error {
	m.record(MutationCall{Op: "increment", UserID: userID, Collection: collection, ID: id, Field: field, Delta: delta})
	return nil
}

func (m *ScriptedDocStore) record(call MutationCall) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// Calls returns a copy of every recorded mutation.
func (m *ScriptedDocStore) Calls() []MutationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MutationCall(nil), m.calls...)
}

// Subscriptions returns a copy of every recorded subscription.
func (m *ScriptedDocStore) Subscriptions() []*Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Subscription(nil), m.subs...)
}

// SubscriptionFor returns the most recent live subscription for a user's
// collection, or an error when none exists.
func (m *ScriptedDocStore) SubscriptionFor(userID, collection string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.subs) - 1; i >= 0; i-- {
		sub := m.subs[i]
		if sub.UserID == userID && sub.Collection == collection && !sub.Cancelled() {
			return sub, nil
		}
	}
	return nil, fmt.Errorf("no live subscription for %s/%s", userID, collection)
}

// DeliverAll pushes the given docs to every live subscription of the user,
// one collection at a time.
func (m *ScriptedDocStore) DeliverAll(userID string, byCollection map[string][]docstore.Document) {
	for collection, docs := range byCollection {
		if sub, err := m.SubscriptionFor(userID, collection); err == nil {
			sub.Deliver(docs)
		}
	}
}

var _ docstore.Store = (*ScriptedDocStore)(nil)

// MockUploader is an export.Uploader fake that stores payloads in memory.
type MockUploader struct {
	mu      sync.Mutex
	Objects map[string][]byte

	// UploadErr, when set, makes Upload fail.
	UploadErr error
}

// NewMockUploader creates an empty MockUploader.
func NewMockUploader() *MockUploader {
	return &MockUploader{Objects: make(map[string][]byte)}
}

// Upload stores the payload under the object path.
func (m *MockUploader) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.Objects[objectPath] = payload
	m.mu.Unlock()
	return objectPath, nil
}

// PresignedURL returns a deterministic fake URL for the key.
func (m *MockUploader) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://exports.test/" + key, nil
}

// Doc is a shorthand for building subscription documents in tests.
func Doc(id string, data map[string]any) docstore.Document {
	return docstore.Document{ID: id, Data: data, CreatedAt: time.Now()}
}
