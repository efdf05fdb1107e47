// Package session tracks the authenticated identity. The gate binds the
// auth collaborator's state stream to the collection store's lifecycle;
// the manager generalizes it to one gate/store pair per user for the
// server.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nestfinance/nest-core/internal/auth"
	"github.com/nestfinance/nest-core/internal/store"
)

// Gate holds the current authenticated identity and drives the collection
// store's connect/disconnect transitions synchronously, so no mutation is
// ever attempted against a stale identifier.
type Gate struct {
	mu     sync.Mutex
	userID string
	store  *store.Store
}

// NewGate creates a gate bound to the given collection store.
func NewGate(st *store.Store) *Gate {
	return &Gate{store: st}
}

// Set replaces the active identity. An empty identifier clears the
// session. The store transition happens before Set returns.
func (g *Gate) Set(ctx context.Context, userID string) {
	g.mu.Lock()
	previous := g.userID
	g.userID = userID
	g.mu.Unlock()

	if userID == "" {
		if previous != "" {
			log.Info().Str("user_id", previous).Msg("Session cleared")
		}
		g.store.Disconnect()
		return
	}

	if userID != previous {
		log.Info().Str("user_id", userID).Msg("Session established")
	}
	g.store.Connect(ctx, userID)
}

// Clear ends the session.
func (g *Gate) Clear() {
	g.Set(context.Background(), "")
}

// CurrentUserID returns the active identifier, or the empty string when
// signed out.
func (g *Gate) CurrentUserID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.userID
}

// Store returns the collection store the gate drives.
func (g *Gate) Store() *store.Store {
	return g.store
}

// Bind subscribes the gate to the authenticator's state stream. The
// returned function unbinds it.
func (g *Gate) Bind(ctx context.Context, authenticator auth.Authenticator) func() {
	return authenticator.OnAuthStateChanged(func(userID string) {
		g.Set(ctx, userID)
	})
}
