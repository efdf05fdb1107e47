package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"
)

// LocalAuthenticator is an in-memory Authenticator for development and
// tests. It is safe for concurrent use.
type LocalAuthenticator struct {
	mu        sync.Mutex
	users     map[string]localUser
	current   string
	listeners map[int64]StateFunc
	nextID    int64
}

type localUser struct {
	id           string
	passwordHash [sha256.Size]byte
}

// NewLocalAuthenticator creates an empty local authenticator.
func NewLocalAuthenticator() *LocalAuthenticator {
	return &LocalAuthenticator{
		users:     make(map[string]localUser),
		listeners: make(map[int64]StateFunc),
	}
}

// OnAuthStateChanged implements Authenticator.
func (a *LocalAuthenticator) OnAuthStateChanged(fn StateFunc) func() {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.listeners[id] = fn
	current := a.current
	a.mu.Unlock()

	fn(current)

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Login implements Authenticator.
func (a *LocalAuthenticator) Login(ctx context.Context, email, password string) (string, error) {
	a.mu.Lock()
	user, ok := a.users[email]
	a.mu.Unlock()

	hash := sha256.Sum256([]byte(password))
	if !ok || subtle.ConstantTimeCompare(user.passwordHash[:], hash[:]) != 1 {
		return "", ErrInvalidCredentials
	}

	a.setCurrent(user.id)
	return user.id, nil
}

// Register implements Authenticator.
func (a *LocalAuthenticator) Register(ctx context.Context, email, password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}

	a.mu.Lock()
	if _, exists := a.users[email]; exists {
		a.mu.Unlock()
		return "", ErrEmailTaken
	}
	user := localUser{
		id:           uuid.NewString(),
		passwordHash: sha256.Sum256([]byte(password)),
	}
	a.users[email] = user
	a.mu.Unlock()

	a.setCurrent(user.id)
	return user.id, nil
}

// Logout implements Authenticator.
func (a *LocalAuthenticator) Logout(ctx context.Context) error {
	a.setCurrent("")
	return nil
}

func (a *LocalAuthenticator) setCurrent(userID string) {
	a.mu.Lock()
	a.current = userID
	listeners := make([]StateFunc, 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(userID)
	}
}

// Ensure LocalAuthenticator implements Authenticator.
var _ Authenticator = (*LocalAuthenticator)(nil)
