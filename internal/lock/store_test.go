package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStoreCheckLockStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("no user", func(t *testing.T) {
		s := NewStore(newMemRepo())
		if s.CheckLockStatus(ctx) {
			t.Error("expected false with no user bound")
		}
		if st := s.State(); st.Loading {
			t.Error("loading flag not cleared")
		}
	})

	t.Run("no configuration", func(t *testing.T) {
		s := NewStore(newMemRepo())
		s.SetUser(ctx, "u1")
		st := s.State()
		if st.LockEnabled || st.IsLocked || st.Loading {
			t.Errorf("state = %+v, want all false", st)
		}
	})

	t.Run("enabled configuration locks", func(t *testing.T) {
		repo := newMemRepo()
		repo.cfgs["u1"] = Config{Enabled: true, Pin: strPtr(PinHash("1234"))}
		s := NewStore(repo)
		s.SetUser(ctx, "u1")
		st := s.State()
		if !st.LockEnabled || !st.IsLocked || st.Loading {
			t.Errorf("state = %+v, want enabled and locked", st)
		}
	})

	t.Run("disabled configuration", func(t *testing.T) {
		repo := newMemRepo()
		repo.cfgs["u1"] = Config{Enabled: false}
		s := NewStore(repo)
		s.SetUser(ctx, "u1")
		st := s.State()
		if st.LockEnabled || st.IsLocked {
			t.Errorf("state = %+v, want unlocked", st)
		}
	})

	t.Run("fail open on fetch error", func(t *testing.T) {
		repo := newMemRepo()
		repo.getErr = errors.New("network down")
		s := NewStore(repo)
		s.SetUser(ctx, "u1")
		st := s.State()
		if st.LockEnabled || st.IsLocked || st.Loading {
			t.Errorf("state = %+v, want fail-open unlocked", st)
		}
	})
}

func TestStoreUnlockAndLock(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.cfgs["u1"] = Config{Enabled: true, Pin: strPtr(PinHash("1234"))}
	s := NewStore(repo)
	s.SetUser(ctx, "u1")

	s.UnlockApp()
	if s.State().IsLocked {
		t.Fatal("still locked after UnlockApp")
	}

	s.LockApp()
	if !s.State().IsLocked {
		t.Fatal("LockApp did not re-lock while enabled")
	}

	s.SetEnabled(false)
	s.LockApp()
	if s.State().IsLocked {
		t.Fatal("LockApp locked while disabled")
	}
}

func TestStoreSignoutResets(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.cfgs["u1"] = Config{Enabled: true, Pin: strPtr(PinHash("1234"))}
	s := NewStore(repo)
	s.SetUser(ctx, "u1")

	s.SetUser(ctx, "")
	if st := s.State(); st.LockEnabled || st.IsLocked || st.Loading {
		t.Errorf("state after signout = %+v, want zero", st)
	}
}

// blockingRepo stalls Get for one user until released, to race two status
// checks against each other.
type blockingRepo struct {
	mu      sync.Mutex
	cfgs    map[string]Config
	blockOn string
	release chan struct{}
}

func (b *blockingRepo) Get(ctx context.Context, userID string) (*Config, error) {
	if userID == b.blockOn {
		<-b.release
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cfg, ok := b.cfgs[userID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (b *blockingRepo) Set(ctx context.Context, userID string, cfg Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfgs[userID] = cfg
	return nil
}

func TestStoreStaleCheckDiscarded(t *testing.T) {
	ctx := context.Background()
	repo := &blockingRepo{
		cfgs: map[string]Config{
			"u1": {Enabled: true, Pin: strPtr(PinHash("1111"))},
			"u2": {Enabled: false},
		},
		blockOn: "u1",
		release: make(chan struct{}),
	}

	s := NewStore(repo)
	s.mu.Lock()
	s.userID = "u1"
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.CheckLockStatus(ctx) // stalls on u1
		close(done)
	}()

	// Switch users while the first check is in flight.
	time.Sleep(10 * time.Millisecond)
	s.SetUser(ctx, "u2")

	close(repo.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stale check never returned")
	}

	if st := s.State(); st.LockEnabled || st.IsLocked {
		t.Errorf("stale u1 result overwrote u2 state: %+v", st)
	}
	if s.UserID() != "u2" {
		t.Errorf("user = %q, want u2", s.UserID())
	}
}
