package lock

import (
	"context"
	"log"
	"sync"
)

// State is the runtime lock state for one app session. It mirrors the remote
// configuration and is never persisted.
type State struct {
	// LockEnabled mirrors Config.Enabled for the current user.
	LockEnabled bool `json:"enabled"`
	// IsLocked reports whether the gate is currently showing the lock screen.
	IsLocked bool `json:"locked"`
	// Loading is true while the remote configuration is being fetched.
	Loading bool `json:"loading"`
}

// Store holds the runtime lock state for one authenticated session. All
// validation happens upstream (in Screen); UnlockApp and LockApp are plain
// state flips.
type Store struct {
	mu     sync.Mutex
	repo   ConfigRepository
	userID string
	gen    uint64
	state  State
}

// NewStore returns a store with no user bound yet.
func NewStore(repo ConfigRepository) *Store {
	return &Store{repo: repo, state: State{Loading: true}}
}

// State returns a snapshot of the runtime lock state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the user currently bound to the store.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// SetUser binds the store to a new authenticated user and refreshes the lock
// status. An empty uid (signout) resets the state immediately without a
// remote call.
func (s *Store) SetUser(ctx context.Context, uid string) {
	s.mu.Lock()
	s.gen++
	s.userID = uid
	if uid == "" {
		s.state = State{}
		s.mu.Unlock()
		return
	}
	s.state.Loading = true
	s.mu.Unlock()

	s.CheckLockStatus(ctx)
}

// CheckLockStatus fetches the configuration for the current user and applies
// it. Missing configuration and fetch failures both resolve to unlocked:
// a transient network error must never trap the user behind the lock screen.
// A result raced by a newer SetUser is discarded.
func (s *Store) CheckLockStatus(ctx context.Context) bool {
	s.mu.Lock()
	uid := s.userID
	gen := s.gen
	s.mu.Unlock()

	if uid == "" {
		s.mu.Lock()
		if gen == s.gen {
			s.state.Loading = false
		}
		s.mu.Unlock()
		return false
	}

	cfg, err := s.repo.Get(ctx, uid)
	enabled := err == nil && cfg != nil && cfg.Enabled

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer user transition owns the state now.
		return enabled
	}
	if err != nil {
		log.Printf("[Lock] status check failed for user %s: %v", uid, err)
		s.state = State{}
		return false
	}
	if cfg == nil {
		s.state = State{}
		return false
	}
	s.state = State{LockEnabled: cfg.Enabled, IsLocked: cfg.Enabled}
	return enabled
}

// UnlockApp clears the locked flag. Validation happens before this is called.
func (s *Store) UnlockApp() {
	s.mu.Lock()
	s.state.IsLocked = false
	s.mu.Unlock()
}

// LockApp re-locks the session. No-op unless the lock is enabled.
func (s *Store) LockApp() {
	s.mu.Lock()
	if s.state.LockEnabled {
		s.state.IsLocked = true
	}
	s.mu.Unlock()
}

// SetEnabled updates the runtime enabled flag after a configuration write.
// Disabling also clears the locked flag.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.state.LockEnabled = enabled
	if !enabled {
		s.state.IsLocked = false
	}
	s.mu.Unlock()
}
