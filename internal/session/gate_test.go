package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/auth"
	"github.com/nestfinance/nest-core/internal/store"
	"github.com/nestfinance/nest-core/internal/testutil"
)

func TestGate_SetDrivesStoreSynchronously(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	gate := NewGate(store.New(docs))

	gate.Set(context.Background(), "alice")

	// By the time Set returns the store is already scoped to alice.
	assert.Equal(t, "alice", gate.CurrentUserID())
	assert.Equal(t, "alice", gate.Store().Snapshot().UserID)
	assert.Equal(t, store.StateConnecting, gate.Store().State())
}

func TestGate_ClearDisconnects(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	gate := NewGate(store.New(docs))

	gate.Set(context.Background(), "alice")
	gate.Clear()

	assert.Empty(t, gate.CurrentUserID())
	assert.Equal(t, store.StateDisconnected, gate.Store().State())
	for _, sub := range docs.Subscriptions() {
		assert.True(t, sub.Cancelled())
	}
}

func TestGate_BindFollowsAuthState(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	gate := NewGate(store.New(docs))

	authenticator := auth.NewLocalAuthenticator()
	unbind := gate.Bind(context.Background(), authenticator)
	defer unbind()

	// Initially signed out.
	assert.Empty(t, gate.CurrentUserID())

	userID, err := authenticator.Register(context.Background(), "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, userID, gate.CurrentUserID())
	assert.Equal(t, userID, gate.Store().Snapshot().UserID)

	require.NoError(t, authenticator.Logout(context.Background()))
	assert.Empty(t, gate.CurrentUserID())
	assert.Equal(t, store.StateDisconnected, gate.Store().State())
}

func TestGate_UnbindStopsFollowing(t *testing.T) {
	docs := testutil.NewScriptedDocStore()
	gate := NewGate(store.New(docs))

	authenticator := auth.NewLocalAuthenticator()
	unbind := gate.Bind(context.Background(), authenticator)
	unbind()

	_, err := authenticator.Register(context.Background(), "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Empty(t, gate.CurrentUserID())
}
