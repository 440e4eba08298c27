package ratelimit

import (
	"fmt"
	"sync"
)

// Limitable is implemented by objects whose operations can be rate limited
// in bulk. The returned map pairs operation names with the bindings that
// guard them; Bundle.Apply attaches limiters by name.
type Limitable interface {
	RateLimitBindings() map[string]*Binding
}

// Bundle is a named collection of limiters with bulk-apply semantics: one
// bundle describes the rate limiting posture for a whole client object, and
// Apply attaches each limiter to the correspondingly named operation.
//
// By default Apply attaches an independent Copy of each limiter, so every
// target object gets its own admission state; SharedLimiters switches to
// attaching the bundle's instances directly.
type Bundle struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	baked    []ApplyOption
}

// NewBundle creates a Bundle from a name-to-limiter map. The map is copied;
// a nil map yields an empty bundle.
func NewBundle(limiters map[string]*Limiter) *Bundle {
	b := &Bundle{limiters: make(map[string]*Limiter, len(limiters))}
	for name, rl := range limiters {
		b.limiters[name] = rl
	}
	return b
}

// Get returns the limiter stored under name, or nil.
func (b *Bundle) Get(name string) *Limiter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.limiters[name]
}

// Lookup returns the limiter stored under name and whether it exists.
func (b *Bundle) Lookup(name string) (*Limiter, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rl, ok := b.limiters[name]
	return rl, ok
}

// Set stores a limiter under name, replacing any existing entry.
func (b *Bundle) Set(name string, rl *Limiter) {
	b.mu.Lock()
	b.limiters[name] = rl
	b.mu.Unlock()
}

// Delete removes the limiter stored under name. No-op when absent.
func (b *Bundle) Delete(name string) {
	b.mu.Lock()
	delete(b.limiters, name)
	b.mu.Unlock()
}

// Contains reports whether a limiter is stored under name.
func (b *Bundle) Contains(name string) bool {
	_, ok := b.Lookup(name)
	return ok
}

// Names returns the operation names in the bundle, in no particular order.
func (b *Bundle) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.limiters))
	for name := range b.limiters {
		names = append(names, name)
	}
	return names
}

// Len returns the number of limiters in the bundle.
func (b *Bundle) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.limiters)
}

// applyConfig is the resolved option set for one Apply call.
type applyConfig struct {
	ignoreMissing bool
	shared        bool
	overrides     []Option
}

// ApplyOption adjusts how Bundle.Apply attaches limiters.
type ApplyOption func(*applyConfig)

// IgnoreMissing makes Apply skip operation names the target does not
// expose, instead of failing.
func IgnoreMissing() ApplyOption {
	return func(c *applyConfig) { c.ignoreMissing = true }
}

// SharedLimiters makes Apply attach the bundle's limiter instances directly
// instead of independent copies, so every target applied to shares one
// admission state per name.
func SharedLimiters() ApplyOption {
	return func(c *applyConfig) { c.shared = true }
}

// WithOverrides forwards limiter options to the copies Apply creates.
// Ignored when SharedLimiters is in effect.
func WithOverrides(opts ...Option) ApplyOption {
	return func(c *applyConfig) { c.overrides = append(c.overrides, opts...) }
}

// Bake stores default apply options on the bundle. Baked options are the
// lowest priority: options passed to Apply directly are applied after them
// and win on conflict.
func (b *Bundle) Bake(opts ...ApplyOption) *Bundle {
	b.mu.Lock()
	b.baked = append([]ApplyOption(nil), opts...)
	b.mu.Unlock()
	return b
}

// Apply attaches the bundle's limiters to the target's bindings by
// operation name.
//
// Every name in the bundle must have a matching binding on the target;
// a missing binding fails with an error wrapping ErrNotLimitable (use
// Placeholder on the target side to pre-wire operations, and IgnoreMissing
// here to tolerate gaps). Failure leaves already-attached bindings in
// place; callers treating Apply as all-or-nothing should apply to a fresh
// target.
func (b *Bundle) Apply(target Limitable, opts ...ApplyOption) error {
	b.mu.RLock()
	limiters := make(map[string]*Limiter, len(b.limiters))
	for name, rl := range b.limiters {
		limiters[name] = rl
	}
	baked := b.baked
	b.mu.RUnlock()

	var cfg applyConfig
	for _, opt := range baked {
		opt(&cfg)
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bindings := target.RateLimitBindings()
	for name, rl := range limiters {
		binding, ok := bindings[name]
		if !ok || binding == nil {
			if cfg.ignoreMissing {
				continue
			}
			return fmt.Errorf("bundle apply %q: %w", name, ErrNotLimitable)
		}

		attached := rl
		if !cfg.shared {
			copied, err := rl.Copy(cfg.overrides...)
			if err != nil {
				return fmt.Errorf("bundle apply %q: %w", name, err)
			}
			attached = copied
		}
		binding.SetState(attached, true)
	}
	return nil
}
