package lock

import (
	"context"
	"sync"
)

// Registry binds each active session token to its runtime lock state. Lock
// state is owned by a single session on a single instance; no cross-device
// synchronization is attempted.
type Registry struct {
	mu       sync.Mutex
	repo     ConfigRepository
	sessions map[string]*entry
}

type entry struct {
	userID  string
	store   *Store
	machine *Machine
	screen  *Screen
}

// NewRegistry returns an empty registry backed by the given repository.
func NewRegistry(repo ConfigRepository) *Registry {
	return &Registry{repo: repo, sessions: make(map[string]*entry)}
}

// Attach creates (or returns) the lock state for a session token and runs the
// initial status check for the user.
func (r *Registry) Attach(ctx context.Context, token, userID string) *Store {
	r.mu.Lock()
	if e, ok := r.sessions[token]; ok && e.userID == userID {
		r.mu.Unlock()
		return e.store
	}
	store := NewStore(r.repo)
	e := &entry{
		userID:  userID,
		store:   store,
		machine: NewMachine(r.repo, store, userID),
		screen:  NewScreen(r.repo, store, userID),
	}
	r.sessions[token] = e
	r.mu.Unlock()

	store.SetUser(ctx, userID)
	return store
}

// Detach drops the lock state for a session token (signout).
func (r *Registry) Detach(token string) {
	r.mu.Lock()
	if e, ok := r.sessions[token]; ok {
		e.store.SetUser(context.Background(), "")
		delete(r.sessions, token)
	}
	r.mu.Unlock()
}

// Store returns the runtime lock state for a session token.
func (r *Registry) Store(token string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	return e.store, true
}

// Machine returns the setup/change machine for a session token.
func (r *Registry) Machine(token string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	return e.machine, true
}

// Screen returns the unlock screen for a session token.
func (r *Registry) Screen(token string) (*Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	return e.screen, true
}
