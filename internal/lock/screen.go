package lock

import (
	"context"
	"log"
	"sync"
)

// User-facing messages for the unlock screen.
const (
	msgEnterFourDigits = "enter your 4-digit PIN"
	msgWrongPin        = "incorrect PIN"
	msgConfigMissing   = "lock settings not found"
	msgUnlockFailed    = "something went wrong, try again"
)

// Screen is the unlock prompt shown while the session is locked. It owns a
// pad wired to Submit, verifies completed entries against the stored
// configuration, and flips the store to unlocked on a match. There is no
// attempt limit; signing out remains the only escape hatch when the PIN is
// forgotten.
type Screen struct {
	mu     sync.Mutex
	repo   ConfigRepository
	store  *Store
	userID string
	pad    *Pad
	err    string
}

// NewScreen returns an unlock screen for the user.
func NewScreen(repo ConfigRepository, store *Store, userID string) *Screen {
	s := &Screen{repo: repo, store: store, userID: userID}
	s.pad = NewPad(func(pin string) {
		s.Submit(context.Background(), pin)
	}, s.ClearError)
	return s
}

// Pad returns the screen's PIN pad.
func (s *Screen) Pad() *Pad { return s.pad }

// Error returns the current validation message, if any.
func (s *Screen) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError drops the validation message.
func (s *Screen) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// Submit verifies a completed PIN entry. On a match it unlocks the session
// and reports true; on any failure it records a message, shakes the pad, and
// reports false so the user can retry in place.
func (s *Screen) Submit(ctx context.Context, pin string) bool {
	if s.userID == "" || !ValidPin(pin) {
		s.fail(msgEnterFourDigits)
		return false
	}

	cfg, err := s.repo.Get(ctx, s.userID)
	if err != nil {
		log.Printf("[Lock] PIN verification failed for user %s: %v", s.userID, err)
		s.fail(msgUnlockFailed)
		return false
	}
	if cfg == nil {
		// The lock screen should only be reachable when a configuration
		// exists; surface it rather than crash.
		log.Printf("[Lock] no configuration found for locked user %s", s.userID)
		s.fail(msgConfigMissing)
		return false
	}

	if cfg.Pin != nil && *cfg.Pin == PinHash(pin) {
		s.mu.Lock()
		s.err = ""
		s.mu.Unlock()
		s.store.UnlockApp()
		return true
	}

	s.fail(msgWrongPin)
	return false
}

func (s *Screen) fail(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
	s.pad.SetError(msg)
}
