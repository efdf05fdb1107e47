package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nestfinance/nest-core/internal/store"
)

// Bridge forwards a store's revision changes to the hub: one watcher
// goroutine per user, started lazily when the first client connects for
// that user. Clients re-pull derived views when they see a revision
// event; the bridge never pushes collection data itself.
type Bridge struct {
	hub *Hub

	mu      sync.Mutex
	running map[string]*watcher
}

type watcher struct {
	st   *store.Store
	stop func()
}

// NewBridge creates a bridge publishing to the given hub.
func NewBridge(hub *Hub) *Bridge {
	return &Bridge{
		hub:     hub,
		running: make(map[string]*watcher),
	}
}

// EnsureUser starts the watcher for a user's store if it is not running.
// Handing it a different store for the same user (the session manager
// rebuilt it after an eviction) stops the old watcher and binds to the
// new store, so revision events keep flowing across session rebuilds.
func (b *Bridge) EnsureUser(userID string, st *store.Store) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.running[userID]; ok {
		if w.st == st {
			return
		}
		w.stop()
		delete(b.running, userID)
	}

	ch, cancelWatch := st.Watch()
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancelWatch()
			close(done)
		})
	}
	b.running[userID] = &watcher{st: st, stop: stop}

	go func() {
		log.Debug().Str("user_id", userID).Msg("Revision bridge started")
		for {
			select {
			case <-ch:
				snap := st.Snapshot()
				b.hub.Broadcast(userID, RevisionEvent(snap))
				if !snap.Healthy {
					b.hub.Broadcast(userID, ErrorEvent("realtime subscription degraded; data may be stale"))
				}
			case <-done:
				log.Debug().Str("user_id", userID).Msg("Revision bridge stopped")
				return
			}
		}
	}()
}

// StopUser stops the watcher for a user, if running.
func (b *Bridge) StopUser(userID string) {
	b.mu.Lock()
	w, ok := b.running[userID]
	if ok {
		delete(b.running, userID)
	}
	b.mu.Unlock()

	if ok {
		w.stop()
	}
}

// Close stops every watcher.
func (b *Bridge) Close() {
	b.mu.Lock()
	watchers := make([]*watcher, 0, len(b.running))
	for userID, w := range b.running {
		watchers = append(watchers, w)
		delete(b.running, userID)
	}
	b.mu.Unlock()

	for _, w := range watchers {
		w.stop()
	}
}
