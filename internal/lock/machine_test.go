package lock

import (
	"context"
	"errors"
	"testing"
)

func TestMachineSetupFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		repo := newMemRepo()
		store := NewStore(repo)
		m := NewMachine(repo, store, "u1")

		m.StartSetup()
		if s := m.Submit(ctx, "1234"); s.Step != StepConfirm {
			t.Fatalf("step after setup entry = %s, want confirm", s.Step)
		}
		s := m.Submit(ctx, "1234")
		if s.Step != StepNone || s.Err != "" || s.TempPin != "" {
			t.Fatalf("session after confirm = %+v, want clean none", s)
		}

		cfg, ok := repo.stored("u1")
		if !ok || !cfg.Enabled || cfg.Pin == nil || *cfg.Pin != PinHash("1234") {
			t.Fatalf("stored config = %+v, want enabled with hash of 1234", cfg)
		}
		if cfg.UpdatedAt == "" {
			t.Error("updatedAt not set")
		}
		if !store.State().LockEnabled {
			t.Error("runtime lockEnabled not set after save")
		}
	})

	t.Run("confirm mismatch retries in place", func(t *testing.T) {
		repo := newMemRepo()
		m := NewMachine(repo, NewStore(repo), "u1")

		m.StartSetup()
		m.Submit(ctx, "1234")
		s := m.Submit(ctx, "4321")
		if s.Step != StepConfirm || s.Err == "" {
			t.Fatalf("session after mismatch = %+v, want confirm with error", s)
		}
		if repo.writes() != 0 {
			t.Errorf("configuration written on mismatch: %d writes", repo.writes())
		}

		// Retry with the matching PIN succeeds without restarting the flow.
		if s := m.Submit(ctx, "1234"); s.Step != StepNone {
			t.Fatalf("retry did not complete: %+v", s)
		}
	})

	t.Run("save failure stays in step", func(t *testing.T) {
		repo := newMemRepo()
		repo.setErr = errors.New("write rejected")
		m := NewMachine(repo, NewStore(repo), "u1")

		m.StartSetup()
		m.Submit(ctx, "1234")
		s := m.Submit(ctx, "1234")
		if s.Step != StepConfirm || s.Err == "" {
			t.Fatalf("session after save failure = %+v, want confirm with error", s)
		}

		repo.setErr = nil
		if s := m.Submit(ctx, "1234"); s.Step != StepNone || s.Err != "" {
			t.Fatalf("retry after save failure = %+v, want clean none", s)
		}
	})
}

func TestMachineChangeFlow(t *testing.T) {
	ctx := context.Background()

	seed := func() (*memRepo, *Machine) {
		repo := newMemRepo()
		repo.cfgs["u1"] = Config{Enabled: true, Pin: strPtr(PinHash("1234"))}
		store := NewStore(repo)
		store.SetUser(ctx, "u1")
		return repo, NewMachine(repo, store, "u1")
	}

	t.Run("wrong current pin stays", func(t *testing.T) {
		_, m := seed()
		m.StartChange()
		s := m.Submit(ctx, "0000")
		if s.Step != StepChangeCurrent || s.Err == "" {
			t.Fatalf("session = %+v, want change_current with error", s)
		}
	})

	t.Run("correct current pin advances", func(t *testing.T) {
		_, m := seed()
		m.StartChange()
		s := m.Submit(ctx, "1234")
		if s.Step != StepChangeNew || s.Err != "" {
			t.Fatalf("session = %+v, want clean change_new", s)
		}
	})

	t.Run("read failure reads as wrong pin", func(t *testing.T) {
		repo, m := seed()
		m.StartChange()
		repo.getErr = errors.New("network down")
		s := m.Submit(ctx, "1234")
		if s.Step != StepChangeCurrent || s.Err == "" {
			t.Fatalf("session = %+v, want change_current with error", s)
		}
	})

	t.Run("full change round trip", func(t *testing.T) {
		repo, m := seed()
		m.StartChange()
		m.Submit(ctx, "1234")
		m.Submit(ctx, "5678")
		s := m.Submit(ctx, "5678")
		if s.Step != StepNone || s.Err != "" {
			t.Fatalf("session = %+v, want clean none", s)
		}
		cfg, _ := repo.stored("u1")
		if cfg.Pin == nil || *cfg.Pin != PinHash("5678") {
			t.Fatalf("stored pin = %v, want hash of 5678", cfg.Pin)
		}
	})

	t.Run("new pin mismatch stays", func(t *testing.T) {
		_, m := seed()
		m.StartChange()
		m.Submit(ctx, "1234")
		m.Submit(ctx, "5678")
		s := m.Submit(ctx, "8765")
		if s.Step != StepChangeConfirm || s.Err == "" {
			t.Fatalf("session = %+v, want change_confirm with error", s)
		}
	})

	t.Run("change requires enabled lock", func(t *testing.T) {
		repo := newMemRepo()
		store := NewStore(repo)
		store.SetUser(ctx, "u1")
		m := NewMachine(repo, store, "u1")
		m.StartChange()
		if s := m.Session(); s.Step != StepNone {
			t.Fatalf("step = %s, want none while lock disabled", s.Step)
		}
	})
}

func TestMachineDisable(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.cfgs["u1"] = Config{Enabled: true, Pin: strPtr(PinHash("1234"))}
	store := NewStore(repo)
	store.SetUser(ctx, "u1")
	m := NewMachine(repo, store, "u1")

	if err := m.Disable(ctx); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	cfg, _ := repo.stored("u1")
	if cfg.Enabled || cfg.Pin != nil {
		t.Fatalf("stored config = %+v, want disabled with nil pin", cfg)
	}
	st := store.State()
	if st.LockEnabled || st.IsLocked {
		t.Fatalf("runtime state = %+v, want disabled and unlocked", st)
	}
}

func TestMachineCancel(t *testing.T) {
	repo := newMemRepo()
	m := NewMachine(repo, NewStore(repo), "u1")

	m.StartSetup()
	m.Submit(context.Background(), "1234")
	m.Cancel()
	if s := m.Session(); s.Step != StepNone || s.TempPin != "" || s.Err != "" {
		t.Fatalf("session after cancel = %+v, want zeroed", s)
	}
}

func TestMachineClearError(t *testing.T) {
	repo := newMemRepo()
	m := NewMachine(repo, NewStore(repo), "u1")

	m.StartSetup()
	m.Submit(context.Background(), "1234")
	m.Submit(context.Background(), "4321")
	if s := m.Session(); s.Err == "" {
		t.Fatalf("session = %+v, want mismatch error", s)
	}

	m.ClearError()
	s := m.Session()
	if s.Err != "" {
		t.Errorf("error not cleared: %+v", s)
	}
	if s.Step != StepConfirm || s.TempPin != "1234" {
		t.Errorf("session = %+v, want confirm step preserved", s)
	}
}

func TestStepInfo(t *testing.T) {
	for _, step := range []Step{StepSetup, StepConfirm, StepChangeCurrent, StepChangeNew, StepChangeConfirm} {
		info := step.Info()
		if info.Title == "" || info.Subtitle == "" || info.Theme == "" {
			t.Errorf("step %s has incomplete info: %+v", step, info)
		}
	}
	if info := StepNone.Info(); info.Title != "" || info.Theme != "setup" {
		t.Errorf("none info = %+v", info)
	}
}
