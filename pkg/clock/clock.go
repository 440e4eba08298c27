// Package clock provides a small time abstraction so that rate limiting
// behavior can be tested deterministically.
//
// Production code uses System(), which reads the real monotonic clock.
// Tests use Manual, which only moves when the test advances it, so
// timing-sensitive admission schedules can be asserted exactly without
// real sleeps or flakiness.
package clock

import "time"

// Clock supplies the time operations the limiter depends on.
//
// Implementations must be safe for concurrent use. Now must be monotonic:
// for two successive calls on the same instance, the second reading never
// precedes the first.
type Clock interface {
	// Now returns the current time. Only differences between readings are
	// meaningful to callers.
	Now() time.Time

	// Sleep blocks the calling goroutine for the given duration.
	// Non-positive durations return immediately.
	Sleep(d time.Duration)

	// After returns a channel that receives the current time once the
	// given duration has elapsed.
	After(d time.Duration) <-chan time.Time
}

// systemClock implements Clock using the process monotonic clock.
type systemClock struct{}

// System returns the real clock. The returned value is stateless and may
// be shared freely.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
