package lock

import (
	"context"
	"log"
	"sync"
	"time"
)

// Step names one stage of the PIN setup/change flow.
type Step string

const (
	StepNone          Step = "none"
	StepSetup         Step = "setup"
	StepConfirm       Step = "confirm"
	StepChangeCurrent Step = "change_current"
	StepChangeNew     Step = "change_new"
	StepChangeConfirm Step = "change_confirm"
)

// User-facing validation messages for the setup/change flow.
const (
	msgPinMismatch    = "PINs do not match"
	msgCurrentWrong   = "current PIN is incorrect"
	msgNewPinMismatch = "new PINs do not match"
	msgSaveFailed     = "could not save your PIN"
)

// Session is the transient state of one setup/change flow. It lives only for
// the duration of the flow and is reset on cancel or completion.
type Session struct {
	Step    Step   `json:"step"`
	TempPin string `json:"-"`
	Err     string `json:"error,omitempty"`
}

// StepInfo describes how the pad should present a step. Purely cosmetic.
type StepInfo struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Theme    string `json:"theme"`
}

// Info returns the pad presentation for the step.
func (s Step) Info() StepInfo {
	switch s {
	case StepSetup:
		return StepInfo{Title: "Set a PIN", Subtitle: "Enter a 4-digit PIN", Theme: "setup"}
	case StepConfirm:
		return StepInfo{Title: "Confirm PIN", Subtitle: "Enter the same PIN again", Theme: "confirm"}
	case StepChangeCurrent:
		return StepInfo{Title: "Current PIN", Subtitle: "Enter your current PIN", Theme: "current"}
	case StepChangeNew:
		return StepInfo{Title: "New PIN", Subtitle: "Enter a new 4-digit PIN", Theme: "new"}
	case StepChangeConfirm:
		return StepInfo{Title: "Confirm new PIN", Subtitle: "Enter the new PIN again", Theme: "confirm"}
	default:
		return StepInfo{Theme: "setup"}
	}
}

// effect is the I/O a transition requires. The transition functions below are
// pure; the Machine shell runs the effect and resolves the session with its
// outcome, which keeps every step testable without a repository.
type effect int

const (
	effectNone effect = iota
	// effectVerifyCurrent compares the entered PIN against the stored hash.
	effectVerifyCurrent
	// effectSave writes an enabled configuration with the entered PIN.
	effectSave
)

// advance computes the next session state for a completed PIN entry plus the
// effect the shell must run before the transition can settle.
func advance(s Session, pin string) (Session, effect) {
	s.Err = ""
	switch s.Step {
	case StepSetup:
		return Session{Step: StepConfirm, TempPin: pin}, effectNone
	case StepConfirm:
		if pin != s.TempPin {
			s.Err = msgPinMismatch
			return s, effectNone
		}
		return s, effectSave
	case StepChangeCurrent:
		return s, effectVerifyCurrent
	case StepChangeNew:
		return Session{Step: StepChangeConfirm, TempPin: pin}, effectNone
	case StepChangeConfirm:
		if pin != s.TempPin {
			s.Err = msgNewPinMismatch
			return s, effectNone
		}
		return s, effectSave
	}
	return s, effectNone
}

// resolveVerify settles a change_current step. A repository read failure is
// deliberately indistinguishable from a wrong PIN here; the user retries
// either way.
func resolveVerify(s Session, ok bool) Session {
	if !ok {
		s.Err = msgCurrentWrong
		return s
	}
	return Session{Step: StepChangeNew}
}

// resolveSave settles a confirm or change_confirm step. A write failure keeps
// the session in place so the user can retry without restarting the flow.
func resolveSave(s Session, err error) Session {
	if err != nil {
		s.Err = msgSaveFailed
		return s
	}
	return Session{Step: StepNone}
}

// Machine drives the PIN setup and change flows for one user session. The
// pad feeds it one completed 4-digit entry at a time via Submit.
type Machine struct {
	mu     sync.Mutex
	repo   ConfigRepository
	store  *Store
	userID string
	sess   Session
	now    func() time.Time
}

// NewMachine returns an idle machine for the user. store may be nil when no
// runtime state needs updating (tests, tooling).
func NewMachine(repo ConfigRepository, store *Store, userID string) *Machine {
	return &Machine{
		repo:   repo,
		store:  store,
		userID: userID,
		sess:   Session{Step: StepNone},
		now:    time.Now,
	}
}

// Session returns the current flow state.
func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// StartSetup begins establishing a new PIN.
func (m *Machine) StartSetup() {
	m.mu.Lock()
	m.sess = Session{Step: StepSetup}
	m.mu.Unlock()
}

// StartChange begins changing the existing PIN. Only meaningful while the
// lock is enabled; otherwise it is ignored.
func (m *Machine) StartChange() {
	if m.store != nil && !m.store.State().LockEnabled {
		return
	}
	m.mu.Lock()
	m.sess = Session{Step: StepChangeCurrent}
	m.mu.Unlock()
}

// Cancel abandons the flow, clearing the buffered PIN and any error.
func (m *Machine) Cancel() {
	m.mu.Lock()
	m.sess = Session{Step: StepNone}
	m.mu.Unlock()
}

// ClearError drops the current validation message. The pad calls this on any
// new input.
func (m *Machine) ClearError() {
	m.mu.Lock()
	m.sess.Err = ""
	m.mu.Unlock()
}

// Submit processes one completed 4-digit entry and returns the resulting
// session state.
func (m *Machine) Submit(ctx context.Context, pin string) Session {
	m.mu.Lock()
	s := m.sess
	m.mu.Unlock()

	ns, eff := advance(s, pin)

	switch eff {
	case effectVerifyCurrent:
		cfg, err := m.repo.Get(ctx, m.userID)
		if err != nil {
			log.Printf("[Lock] current-PIN check failed for user %s: %v", m.userID, err)
		}
		ok := err == nil && cfg != nil && cfg.Pin != nil && *cfg.Pin == PinHash(pin)
		ns = resolveVerify(ns, ok)

	case effectSave:
		h := PinHash(pin)
		err := m.repo.Set(ctx, m.userID, Config{
			Enabled:   true,
			Pin:       &h,
			UpdatedAt: m.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("[Lock] failed to save PIN for user %s: %v", m.userID, err)
		}
		ns = resolveSave(ns, err)
		if err == nil && m.store != nil {
			m.store.SetEnabled(true)
		}
	}

	m.mu.Lock()
	m.sess = ns
	m.mu.Unlock()
	return ns
}

// Disable turns the screen lock off, clearing the stored hash. The product
// keeps this a single toggle: no PIN confirmation is asked.
func (m *Machine) Disable(ctx context.Context) error {
	err := m.repo.Set(ctx, m.userID, Config{
		Enabled:   false,
		Pin:       nil,
		UpdatedAt: m.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if m.store != nil {
		m.store.SetEnabled(false)
	}
	m.mu.Lock()
	m.sess = Session{Step: StepNone}
	m.mu.Unlock()
	return nil
}
