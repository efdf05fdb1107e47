package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/store"
)

func TestRevisionEvent(t *testing.T) {
	snap := store.Snapshot{
		Revision: 42,
		State:    store.StateReady,
		Loading:  false,
		Healthy:  true,
	}

	event := RevisionEvent(snap)
	assert.Equal(t, EventTypeRevision, event.Type)
	assert.False(t, event.Timestamp.IsZero())

	payload, ok := event.Payload.(RevisionPayload)
	require.True(t, ok)
	assert.Equal(t, uint64(42), payload.Revision)
	assert.True(t, payload.Healthy)
}

func TestEvent_ToJSON(t *testing.T) {
	event := RevisionEvent(store.Snapshot{Revision: 3, State: store.StateReady, Healthy: true})

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "store.revision", decoded["type"])

	payload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), payload["revision"])
	assert.Equal(t, true, payload["healthy"])
}

func TestErrorEvent(t *testing.T) {
	event := ErrorEvent("subscription degraded")
	assert.Equal(t, EventTypeError, event.Type)

	data, err := event.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "subscription degraded")
}
