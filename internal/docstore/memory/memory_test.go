package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/docstore"
)

// snapshotRecorder collects subscription deliveries for assertions.
type snapshotRecorder struct {
	mu        sync.Mutex
	snapshots [][]docstore.Document
}

func (r *snapshotRecorder) onSnapshot(docs []docstore.Document) {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, docs)
	r.mu.Unlock()
}

func (r *snapshotRecorder) latest() ([]docstore.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}

func waitForDocs(t *testing.T, r *snapshotRecorder, want int) []docstore.Document {
	t.Helper()
	var latest []docstore.Document
	require.Eventually(t, func() bool {
		docs, ok := r.latest()
		if !ok || len(docs) != want {
			return false
		}
		latest = docs
		return true
	}, time.Second, 5*time.Millisecond)
	return latest
}

func TestStore_SubscribeDeliversInitialSnapshot(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	_, err := s.Create(ctx, "alice", docstore.CollectionGoals, map[string]any{"name": "Vacation"})
	require.NoError(t, err)

	rec := &snapshotRecorder{}
	cancel, err := s.Subscribe(ctx, "alice", docstore.CollectionGoals, rec.onSnapshot, nil)
	require.NoError(t, err)
	defer cancel()

	docs := waitForDocs(t, rec, 1)
	assert.Equal(t, "Vacation", docs[0].Data["name"])
}

func TestStore_WritesFanOutToSubscribers(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	rec := &snapshotRecorder{}
	cancel, err := s.Subscribe(ctx, "alice", docstore.CollectionBudgets, rec.onSnapshot, nil)
	require.NoError(t, err)
	defer cancel()

	waitForDocs(t, rec, 0)

	id, err := s.Create(ctx, "alice", docstore.CollectionBudgets, map[string]any{"category": "Food", "limit": "300"})
	require.NoError(t, err)
	waitForDocs(t, rec, 1)

	require.NoError(t, s.Update(ctx, "alice", docstore.CollectionBudgets, id, map[string]any{"limit": "350"}))
	require.Eventually(t, func() bool {
		docs, ok := rec.latest()
		return ok && len(docs) == 1 && docs[0].Data["limit"] == "350"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Delete(ctx, "alice", docstore.CollectionBudgets, id))
	waitForDocs(t, rec, 0)
}

func TestStore_CollectionsAreScopedPerUser(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	_, err := s.Create(ctx, "alice", docstore.CollectionGoals, map[string]any{"name": "Alice's goal"})
	require.NoError(t, err)

	rec := &snapshotRecorder{}
	cancel, err := s.Subscribe(ctx, "bob", docstore.CollectionGoals, rec.onSnapshot, nil)
	require.NoError(t, err)
	defer cancel()

	docs := waitForDocs(t, rec, 0)
	assert.Empty(t, docs)
}

func TestStore_UpdateMissingDocument(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	err := s.Update(ctx, "alice", docstore.CollectionGoals, "nope", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	err = s.Increment(ctx, "alice", docstore.CollectionGoals, "nope", "currentAmount", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	// Deleting an absent document is not an error.
	assert.NoError(t, s.Delete(ctx, "alice", docstore.CollectionGoals, "nope"))
}

func TestStore_SetCreatesOrMerges(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "alice", docstore.CollectionProfiles, "alice", map[string]any{
		"recurringIncome": "1500",
		"planTier":        "free",
	}))
	require.NoError(t, s.Set(ctx, "alice", docstore.CollectionProfiles, "alice", map[string]any{
		"planTier": "premium",
	}))

	rec := &snapshotRecorder{}
	cancel, err := s.Subscribe(ctx, "alice", docstore.CollectionProfiles, rec.onSnapshot, nil)
	require.NoError(t, err)
	defer cancel()

	docs := waitForDocs(t, rec, 1)
	assert.Equal(t, "1500", docs[0].Data["recurringIncome"], "merge must keep untouched fields")
	assert.Equal(t, "premium", docs[0].Data["planTier"])
}

func TestStore_ServerTimestampResolvesAtWriteTime(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	before := time.Now().UTC()
	_, err := s.Create(ctx, "alice", docstore.CollectionTransactions, map[string]any{
		"description": "Coffee",
		"date":        docstore.ServerTimestamp,
	})
	require.NoError(t, err)
	after := time.Now().UTC()

	rec := &snapshotRecorder{}
	cancel, err := s.Subscribe(ctx, "alice", docstore.CollectionTransactions, rec.onSnapshot, nil)
	require.NoError(t, err)
	defer cancel()

	docs := waitForDocs(t, rec, 1)
	stamped, ok := docs[0].Data["date"].(time.Time)
	require.True(t, ok, "sentinel must be replaced with a concrete time")
	assert.False(t, stamped.Before(before))
	assert.False(t, stamped.After(after))
}

func TestStore_ConcurrentIncrementsAllLand(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "alice", docstore.CollectionGoals, "g1", map[string]any{
		"name":          "Vacation",
		"currentAmount": "0",
	}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Increment(ctx, "alice", docstore.CollectionGoals, "g1", "currentAmount", decimal.NewFromInt(50))
		}()
		go func() {
			defer wg.Done()
			_ = s.Increment(ctx, "alice", docstore.CollectionGoals, "g1", "currentAmount", decimal.NewFromInt(-20))
		}()
	}
	wg.Wait()

	rec := &snapshotRecorder{}
	cancel, err := s.Subscribe(ctx, "alice", docstore.CollectionGoals, rec.onSnapshot, nil)
	require.NoError(t, err)
	defer cancel()

	docs := waitForDocs(t, rec, 1)
	assert.Equal(t, "300", docs[0].Data["currentAmount"], "10x(+50) and 10x(-20) must net to +300")
}

func TestStore_CoalescesWhenListenerFallsBehind(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	release := make(chan struct{})
	rec := &snapshotRecorder{}
	first := true
	cancel, err := s.Subscribe(ctx, "alice", docstore.CollectionBudgets, func(docs []docstore.Document) {
		if first {
			first = false
			<-release // stall the pump so writes pile up
		}
		rec.onSnapshot(docs)
	}, nil)
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, "alice", docstore.CollectionBudgets, map[string]any{"category": "Cat"})
		require.NoError(t, err)
	}
	close(release)

	// Only the latest state matters; intermediate snapshots may be
	// dropped but the final one must show all five documents.
	waitForDocs(t, rec, 5)
}

func TestStore_CloseStopsEverything(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Subscribe(ctx, "alice", docstore.CollectionGoals, func([]docstore.Document) {}, nil)
	require.NoError(t, err)

	s.Close()

	_, err = s.Create(ctx, "alice", docstore.CollectionGoals, map[string]any{})
	assert.ErrorIs(t, err, docstore.ErrClosed)

	_, err = s.Subscribe(ctx, "alice", docstore.CollectionGoals, func([]docstore.Document) {}, nil)
	assert.ErrorIs(t, err, docstore.ErrClosed)
}
