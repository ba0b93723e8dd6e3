package lock

import (
	"sync"
	"time"
)

const (
	// MaxPinLength is the number of digits in a PIN.
	MaxPinLength = 4

	// defaultCompleteDelay lets the fourth indicator render before the
	// completion callback fires.
	defaultCompleteDelay = 200 * time.Millisecond
	// defaultClearDelay empties the buffer after completion so the pad can be
	// reused without rebuilding it.
	defaultClearDelay = 300 * time.Millisecond
	// shakeDuration bounds the shake indication after a rejected PIN.
	shakeDuration = 500 * time.Millisecond
)

// ValidPin reports whether s is a complete 4-digit PIN. The pad only
// ever emits strings that satisfy this; callers accepting PINs from
// other sources apply the same rule.
func ValidPin(s string) bool {
	if len(s) != MaxPinLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Pad is a headless 4-digit PIN entry buffer. It collects digit presses,
// fires the completion callback exactly once when the fourth digit lands,
// and resets itself when the owner reports an error (wrong PIN) so the user
// can retry immediately. It performs no network or storage access.
type Pad struct {
	mu         sync.Mutex
	buf        string
	completing bool
	shaking    bool

	onComplete func(pin string)
	clearError func()

	completeDelay time.Duration
	clearDelay    time.Duration

	shakeTimer *time.Timer
}

// NewPad returns a pad that calls onComplete with the 4-digit PIN once per
// filled buffer. clearError is invoked on every input so stale validation
// messages never outlive the entry they belong to; either callback may be nil.
func NewPad(onComplete func(pin string), clearError func()) *Pad {
	return &Pad{
		onComplete:    onComplete,
		clearError:    clearError,
		completeDelay: defaultCompleteDelay,
		clearDelay:    defaultClearDelay,
	}
}

// SetDelays overrides the completion and post-completion clear delays.
// Zero or negative values make the corresponding step synchronous.
func (p *Pad) SetDelays(complete, clear time.Duration) {
	p.mu.Lock()
	p.completeDelay = complete
	p.clearDelay = clear
	p.mu.Unlock()
}

// Press appends one digit. Presses beyond four digits, non-digits, and
// presses while a completion is pending are ignored.
func (p *Pad) Press(digit string) {
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return
	}

	p.mu.Lock()
	if p.completing || len(p.buf) >= MaxPinLength {
		p.mu.Unlock()
		return
	}
	p.buf += digit
	full := len(p.buf) == MaxPinLength
	if full {
		p.completing = true
	}
	delay := p.completeDelay
	p.mu.Unlock()

	p.fireClearError()

	if !full {
		return
	}
	if delay <= 0 {
		p.complete()
	} else {
		time.AfterFunc(delay, p.complete)
	}
}

func (p *Pad) complete() {
	p.mu.Lock()
	if !p.completing {
		// An error or reset got here first.
		p.mu.Unlock()
		return
	}
	pin := p.buf
	cb := p.onComplete
	clear := p.clearDelay
	p.mu.Unlock()

	if cb != nil {
		cb(pin)
	}

	if clear <= 0 {
		p.finishComplete()
	} else {
		time.AfterFunc(clear, p.finishComplete)
	}
}

func (p *Pad) finishComplete() {
	p.mu.Lock()
	if p.completing {
		p.buf = ""
		p.completing = false
	}
	p.mu.Unlock()
}

// Delete removes the last digit, if any.
func (p *Pad) Delete() {
	p.mu.Lock()
	if !p.completing && len(p.buf) > 0 {
		p.buf = p.buf[:len(p.buf)-1]
	}
	p.mu.Unlock()
	p.fireClearError()
}

// Clear empties the buffer.
func (p *Pad) Clear() {
	p.mu.Lock()
	if !p.completing {
		p.buf = ""
	}
	p.mu.Unlock()
	p.fireClearError()
}

// SetError tells the pad its last submission was rejected. A non-empty
// message empties the buffer and raises the shake indication for a bounded
// time; an empty message is ignored.
func (p *Pad) SetError(msg string) {
	if msg == "" {
		return
	}
	p.mu.Lock()
	p.buf = ""
	p.completing = false
	p.shaking = true
	if p.shakeTimer != nil {
		p.shakeTimer.Stop()
	}
	p.shakeTimer = time.AfterFunc(shakeDuration, p.stopShake)
	p.mu.Unlock()
}

func (p *Pad) stopShake() {
	p.mu.Lock()
	p.shaking = false
	p.mu.Unlock()
}

// Reset clears buffer, shake state, and the owner's error message. Callers
// reuse one pad across the steps of a multi-step flow by resetting it between
// steps.
func (p *Pad) Reset() {
	p.mu.Lock()
	p.buf = ""
	p.completing = false
	p.shaking = false
	if p.shakeTimer != nil {
		p.shakeTimer.Stop()
	}
	p.mu.Unlock()
	p.fireClearError()
}

// Buffer returns the digits entered so far.
func (p *Pad) Buffer() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf
}

// Shaking reports whether the shake indication is currently active.
func (p *Pad) Shaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shaking
}

func (p *Pad) fireClearError() {
	if p.clearError != nil {
		p.clearError()
	}
}
