// Package auth defines the authentication collaborator consumed by the
// session gate. Token validation for the HTTP surface lives in
// internal/middleware; this package is the client-facing contract plus a
// local implementation for tests and development.
package auth

import (
	"context"
	"errors"
)

// Authentication errors carry human-readable messages surfaced next to
// the login form.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// StateFunc receives the authenticated user identifier on every auth
// state change; the empty string means signed out.
type StateFunc func(userID string)

// Authenticator is the authentication collaborator contract.
type Authenticator interface {
	// OnAuthStateChanged registers a state listener. The listener is
	// invoked immediately with the current state and again on every
	// change. The returned function unregisters it.
	OnAuthStateChanged(fn StateFunc) (cancel func())

	// Login authenticates and returns the user identifier.
	Login(ctx context.Context, email, password string) (string, error)

	// Register creates a new account and signs it in.
	Register(ctx context.Context, email, password string) (string, error)

	// Logout clears the authenticated state.
	Logout(ctx context.Context) error
}
