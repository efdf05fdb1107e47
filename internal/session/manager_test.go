package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/docstore"
	"github.com/nestfinance/nest-core/internal/docstore/memory"
	"github.com/nestfinance/nest-core/internal/store"
	"github.com/nestfinance/nest-core/internal/testutil"
)

func TestManager_StoreForCreatesOncePerUser(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	m := NewManager(docs, time.Minute)
	defer m.Close()

	first := m.StoreFor("alice")
	second := m.StoreFor("alice")
	assert.Same(t, first, second)
	assert.Equal(t, 1, m.SessionCount())

	other := m.StoreFor("bob")
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, m.SessionCount())

	// Each store is scoped to its own user.
	assert.Equal(t, "alice", first.Snapshot().UserID)
	assert.Equal(t, "bob", other.Snapshot().UserID)
}

func TestManager_EvictDisconnects(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	m := NewManager(docs, time.Minute)
	defer m.Close()

	st := m.StoreFor("alice")
	require.Equal(t, 1, m.SessionCount())

	m.Evict("alice")
	assert.Equal(t, 0, m.SessionCount())
	assert.Equal(t, store.StateDisconnected, st.State())

	// Evicting an unknown user is a no-op.
	m.Evict("nobody")
}

func TestManager_EvictIdleLeavesActiveSessions(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	m := NewManager(docs, 50*time.Millisecond)
	defer m.Close()

	idle := m.StoreFor("idle-user")
	time.Sleep(80 * time.Millisecond)
	active := m.StoreFor("active-user")

	m.evictIdle()

	assert.Equal(t, 1, m.SessionCount())
	assert.Equal(t, store.StateDisconnected, idle.State())
	assert.NotEqual(t, store.StateDisconnected, active.State())
}

func TestManager_SubscriptionsSurviveUntilClose(t *testing.T) {
	docs := memory.NewStore()
	defer docs.Close()
	m := NewManager(docs, time.Minute)
	defer m.Close()

	st := m.StoreFor("alice")
	require.Eventually(t, func() bool {
		return !st.Loading()
	}, time.Second, 5*time.Millisecond)

	// Writes arriving well after the creating call returned must still
	// reach the snapshot through live subscriptions.
	_, err := docs.Create(context.Background(), "alice", docstore.CollectionTransactions, map[string]any{
		"type":        "expense",
		"description": "Coffee",
		"amount":      "4.50",
		"date":        time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(st.Snapshot().Transactions) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, st.Health())
}

func TestManager_OnEvictFiresForEveryEvictionPath(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	m := NewManager(docs, time.Minute)

	var mu sync.Mutex
	var evicted []string
	m.OnEvict(func(userID string) {
		mu.Lock()
		evicted = append(evicted, userID)
		mu.Unlock()
	})

	m.StoreFor("alice")
	m.StoreFor("bob")

	m.Evict("alice")
	m.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"alice", "bob"}, evicted)
}

func TestManager_CloseDisconnectsAll(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	m := NewManager(docs, time.Minute)

	alice := m.StoreFor("alice")
	bob := m.StoreFor("bob")

	m.Close()

	assert.Equal(t, 0, m.SessionCount())
	assert.Equal(t, store.StateDisconnected, alice.State())
	assert.Equal(t, store.StateDisconnected, bob.State())
}
