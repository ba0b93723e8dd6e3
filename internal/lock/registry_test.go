package lock

import (
	"context"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.cfgs["u1"] = Config{Enabled: true, Pin: strPtr(PinHash("1234"))}
	reg := NewRegistry(repo)

	store := reg.Attach(ctx, "tok1", "u1")
	if !store.State().IsLocked {
		t.Fatal("attach did not run the initial status check")
	}

	t.Run("attach is idempotent per token", func(t *testing.T) {
		again := reg.Attach(ctx, "tok1", "u1")
		if again != store {
			t.Error("second attach returned a different store")
		}
	})

	t.Run("lookups", func(t *testing.T) {
		if _, ok := reg.Store("tok1"); !ok {
			t.Error("Store lookup failed")
		}
		if _, ok := reg.Machine("tok1"); !ok {
			t.Error("Machine lookup failed")
		}
		if _, ok := reg.Screen("tok1"); !ok {
			t.Error("Screen lookup failed")
		}
		if _, ok := reg.Store("unknown"); ok {
			t.Error("lookup succeeded for unknown token")
		}
	})

	t.Run("detach", func(t *testing.T) {
		reg.Detach("tok1")
		if _, ok := reg.Store("tok1"); ok {
			t.Error("store still registered after detach")
		}
		if st := store.State(); st.IsLocked || st.LockEnabled {
			t.Errorf("state after detach = %+v, want zero", st)
		}
	})
}
