package ratelimit

import (
	"time"

	"quell-hq/quell/pkg/clock"
)

// settings carries the configuration a Limiter was built with. A copy of
// the originating settings is kept on the limiter so Copy can reproduce it
// with overrides applied on top.
type settings struct {
	safeStart      bool
	throwOnLimit   bool
	concurrentWait bool
	variation      time.Duration
	clock          clock.Clock
	name           string
	metrics        *Metrics
	recorder       Recorder
}

// Option configures a Limiter at construction.
type Option func(*settings)

// WithSafeStart pre-fills the history to full capacity with the
// construction-time timestamp, so every configured limit reads as
// immediately full and the very first admission is subject to the full
// configured delay. Useful while developing against an upstream whose
// limits must not be tripped.
func WithSafeStart(on bool) Option {
	return func(s *settings) { s.safeStart = on }
}

// WithThrowOnLimit makes admission return an *ExceededError carrying the
// computed wait instead of sleeping. Admissions that require no wait still
// succeed normally.
func WithThrowOnLimit(on bool) Option {
	return func(s *settings) { s.throwOnLimit = on }
}

// WithVariation adds a signed offset to every computed wait. A positive
// variation pads the wait to absorb the gap between the admission point and
// whatever inside the operation is actually rate limited; a negative one
// trims it. Waits that come out non-positive are treated as no wait.
func WithVariation(d time.Duration) Option {
	return func(s *settings) { s.variation = d }
}

// WithConcurrentWait changes how Wait holds the waiter queue: the
// reservation is committed and the queue released before sleeping, so the
// next waiter starts computing its own wait immediately instead of after
// the current one finishes sleeping. This trades a little extra reservation
// pessimism for throughput; see Limiter.Wait.
func WithConcurrentWait(on bool) Option {
	return func(s *settings) { s.concurrentWait = on }
}

// WithClock substitutes the time source. Intended for tests driving a
// clock.Manual; production limiters use clock.System.
func WithClock(c clock.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithName sets the limiter's name, used as the metrics and journal label.
// Unnamed limiters get a random identity.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithMetrics attaches Prometheus instrumentation. A nil Metrics disables
// instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithRecorder attaches an admission recorder, e.g. a journal backend.
// Recording happens outside the limiter's mutex, after each decision.
func WithRecorder(r Recorder) Option {
	return func(s *settings) { s.recorder = r }
}
