package ratelimit

import (
	"context"
	"sync"
)

// Binding is the adapter between an operation and a Limiter: an explicit,
// statically-typed pairing of an optional limiter reference with an enabled
// flag. Call sites route their invocations through Do or DoContext; the
// binding performs admission exactly once per invocation and skips the
// operation entirely when admission is denied.
//
// The limiter reference and the enabled flag may be swapped at runtime
// (e.g. by Bundle.Apply), which is why access goes through a lock rather
// than plain fields.
type Binding struct {
	mu      sync.RWMutex
	limiter *Limiter
	enabled bool
}

// NewBinding creates a Binding attached to rl, enabled.
func NewBinding(rl *Limiter) *Binding {
	return &Binding{limiter: rl, enabled: true}
}

// Placeholder creates an enabled Binding with no limiter attached yet.
// Operations guarded by a placeholder run unthrottled until a limiter is
// set, typically by a Bundle.
func Placeholder() *Binding {
	return &Binding{enabled: true}
}

// Do admits through the bound limiter (blocking), then invokes fn. When the
// binding is disabled or has no limiter, fn runs immediately. A denied
// admission is a hard stop: fn is not invoked and the admission error is
// returned as-is.
func (b *Binding) Do(fn func() error) error {
	if rl, on := b.State(); on && rl != nil {
		if err := rl.Admit(); err != nil {
			return err
		}
	}
	return fn()
}

// DoContext is Do with context-aware admission via Limiter.Wait.
func (b *Binding) DoContext(ctx context.Context, fn func(context.Context) error) error {
	if rl, on := b.State(); on && rl != nil {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	}
	return fn(ctx)
}

// Limiter returns the bound limiter, which may be nil.
func (b *Binding) Limiter() *Limiter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.limiter
}

// SetLimiter replaces the bound limiter. A nil limiter detaches rate
// limiting without touching the enabled flag.
func (b *Binding) SetLimiter(rl *Limiter) {
	b.mu.Lock()
	b.limiter = rl
	b.mu.Unlock()
}

// Enable turns admission checks on.
func (b *Binding) Enable() {
	b.setEnabled(true)
}

// Disable turns admission checks off without detaching the limiter, so the
// binding can be re-enabled later.
func (b *Binding) Disable() {
	b.setEnabled(false)
}

// Enabled reports whether admission checks are on.
func (b *Binding) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// State returns the bound limiter and the enabled flag as one consistent
// snapshot.
func (b *Binding) State() (*Limiter, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.limiter, b.enabled
}

// SetState replaces both the limiter and the enabled flag atomically.
func (b *Binding) SetState(rl *Limiter, enabled bool) {
	b.mu.Lock()
	b.limiter = rl
	b.enabled = enabled
	b.mu.Unlock()
}

func (b *Binding) setEnabled(on bool) {
	b.mu.Lock()
	b.enabled = on
	b.mu.Unlock()
}

// Wrap returns a closure that routes fn through b. Useful when handing a
// guarded operation to code that expects a plain function value.
func Wrap(b *Binding, fn func() error) func() error {
	return func() error {
		return b.Do(fn)
	}
}

// WrapContext is Wrap for context-aware operations.
func WrapContext(b *Binding, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return b.DoContext(ctx, fn)
	}
}
