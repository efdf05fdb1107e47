package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nestfinance/nest-core/internal/docstore"
	"github.com/nestfinance/nest-core/internal/store"
)

const (
	// DefaultIdleTTL is how long an untouched session survives before its
	// subscriptions are cancelled.
	DefaultIdleTTL = 30 * time.Minute

	janitorInterval = 5 * time.Minute
)

// Manager owns one connected collection store per authenticated user on
// the server side. Stores are created lazily on first use and torn down
// after the idle TTL.
type Manager struct {
	docs    docstore.Store
	idleTTL time.Duration

	// ctx outlives any request: session subscriptions are bound to the
	// manager's lifetime, never to the HTTP request that happened to
	// create them.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*managedSession
	onEvict  []func(userID string)
	stopCh   chan struct{}
	stopOnce sync.Once
}

type managedSession struct {
	gate     *Gate
	lastSeen time.Time
}

// NewManager creates a session manager and starts its eviction loop.
func NewManager(docs docstore.Store, idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		docs:     docs,
		idleTTL:  idleTTL,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*managedSession),
		stopCh:   make(chan struct{}),
	}
	go m.janitor()
	return m
}

// OnEvict registers a hook invoked with the user ID whenever a session is
// evicted, whether explicitly, by the idle janitor, or on Close.
func (m *Manager) OnEvict(fn func(userID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = append(m.onEvict, fn)
}

func (m *Manager) notifyEvict(userIDs []string) {
	m.mu.Lock()
	hooks := make([]func(string), len(m.onEvict))
	copy(hooks, m.onEvict)
	m.mu.Unlock()

	for _, userID := range userIDs {
		for _, fn := range hooks {
			fn(userID)
		}
	}
}

// StoreFor returns the connected collection store for the user, creating
// the session on first use.
func (m *Manager) StoreFor(userID string) *store.Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	if !ok {
		gate := NewGate(store.New(m.docs))
		gate.Set(m.ctx, userID)
		session = &managedSession{gate: gate}
		m.sessions[userID] = session
		log.Debug().Str("user_id", userID).Msg("Session store created")
	}
	session.lastSeen = time.Now()
	return session.gate.Store()
}

// Evict disconnects and removes a user's session immediately.
func (m *Manager) Evict(userID string) {
	m.mu.Lock()
	session, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if ok {
		session.gate.Clear()
		m.notifyEvict([]string{userID})
		log.Debug().Str("user_id", userID).Msg("Session store evicted")
	}
}

// SessionCount returns the number of live sessions.
func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the eviction loop and disconnects every session.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stopCh) })

	m.mu.Lock()
	sessions := make([]*managedSession, 0, len(m.sessions))
	userIDs := make([]string, 0, len(m.sessions))
	for userID, session := range m.sessions {
		sessions = append(sessions, session)
		userIDs = append(userIDs, userID)
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	for _, session := range sessions {
		session.gate.Clear()
	}
	m.notifyEvict(userIDs)
	m.cancel()
}

func (m *Manager) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	var stale []*managedSession
	var staleIDs []string
	for userID, session := range m.sessions {
		if session.lastSeen.Before(cutoff) {
			stale = append(stale, session)
			staleIDs = append(staleIDs, userID)
			delete(m.sessions, userID)
			log.Debug().Str("user_id", userID).Msg("Evicting idle session store")
		}
	}
	m.mu.Unlock()

	for _, session := range stale {
		session.gate.Clear()
	}
	m.notifyEvict(staleIDs)
}
