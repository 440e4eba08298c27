package clock

import (
	"sync"
	"time"
)

// Manual is a controllable Clock for deterministic tests.
//
// Time only moves when the test moves it: Advance and Set change the
// reading directly, and Sleep/After advance the clock by the requested
// duration immediately instead of blocking. An admission sequence driven
// by a Manual clock therefore produces an exact, reproducible schedule.
//
// Manual is safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a Manual clock starting at the given instant.
// The choice of start time is arbitrary; only elapsed time matters.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are ignored,
// preserving monotonicity.
func (c *Manual) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set jumps the clock to an absolute instant. Unlike Advance this can move
// time backward; use it only to establish an initial state.
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Sleep advances the clock by d and returns immediately.
func (c *Manual) Sleep(d time.Duration) {
	c.Advance(d)
}

// After advances the clock by d and returns an already-fired channel
// carrying the new reading. Callers selecting on the result proceed at
// once, which keeps cancellation paths testable without real waiting.
func (c *Manual) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}
