package lock

import (
	"context"
	"sync"
)

// memRepo is an in-memory ConfigRepository for tests. getErr/setErr force the
// corresponding operation to fail.
type memRepo struct {
	mu     sync.Mutex
	cfgs   map[string]Config
	getErr error
	setErr error
	sets   int
}

func newMemRepo() *memRepo {
	return &memRepo{cfgs: make(map[string]Config)}
}

func (m *memRepo) Get(ctx context.Context, userID string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	cfg, ok := m.cfgs[userID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *memRepo) Set(ctx context.Context, userID string, cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.cfgs[userID] = cfg
	return nil
}

func (m *memRepo) stored(userID string) (Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.cfgs[userID]
	return cfg, ok
}

func (m *memRepo) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func strPtr(s string) *string { return &s }
