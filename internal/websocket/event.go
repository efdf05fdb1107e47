package websocket

import (
	"encoding/json"
	"time"

	"github.com/nestfinance/nest-core/internal/store"
)

// EventType names the messages pushed to clients.
type EventType string

const (
	// EventTypeRevision announces a new store revision; clients re-pull
	// whatever derived views they render.
	EventTypeRevision EventType = "store.revision"
	// EventTypeError announces a subscription failure: data may be stale
	// until the session reconnects.
	EventTypeError EventType = "store.error"
)

// Event is a message sent to WebSocket clients.
// Format: { type, payload, timestamp }
type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RevisionPayload describes the store state accompanying a revision event.
type RevisionPayload struct {
	Revision uint64      `json:"revision"`
	State    store.State `json:"state"`
	Loading  bool        `json:"loading"`
	Healthy  bool        `json:"healthy"`
}

// NewEvent creates a new event with the given type and payload
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// RevisionEvent builds a store.revision event from a snapshot.
func RevisionEvent(snap store.Snapshot) Event {
	return NewEvent(EventTypeRevision, RevisionPayload{
		Revision: snap.Revision,
		State:    snap.State,
		Loading:  snap.Loading,
		Healthy:  snap.Healthy,
	})
}

// ErrorEvent builds a store.error event.
func ErrorEvent(message string) Event {
	return NewEvent(EventTypeError, map[string]string{"message": message})
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
