package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"quell-hq/quell/pkg/clock"
)

// Limiter serializes admission to a rate-limited operation.
//
// One Limiter instance is shared by reference across every call site it is
// attached to; concurrent callers contend on the same history. Criteria are
// immutable after construction.
//
// Two entry points perform the same admission algorithm and differ only in
// how the sleep is carried out: Admit blocks the goroutine directly, Wait
// honors context cancellation and queues concurrent waiters in arrival
// order. Both may be used against the same instance at the same time.
type Limiter struct {
	criteria []Criterion

	// mu guards history reads and writes. It is held only across the
	// compute-and-reserve step, never across a sleep.
	mu      sync.Mutex
	history *History

	// waiters serializes Wait callers in FIFO order. Unlike mu it is safe
	// to hold while suspended, which is exactly what the default (non
	// concurrent) wait mode does. Admit callers never touch it.
	waiters *semaphore.Weighted

	base settings
}

// New creates a Limiter from one or more criteria.
//
// It fails with a *ConfigError when no criteria are supplied or when a
// criterion's own parameters are invalid. The history capacity is sized to
// the most demanding Limit criterion (a single slot suffices for Rate-only
// configurations).
//
// Example:
//
//	rl, err := ratelimit.New(
//	    []ratelimit.Criterion{ratelimit.PerSecond(2), ratelimit.Limit{Calls: 20, Window: 10 * time.Second}},
//	    ratelimit.WithSafeStart(true),
//	)
func New(criteria []Criterion, opts ...Option) (*Limiter, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return newLimiter(criteria, s)
}

func newLimiter(criteria []Criterion, s settings) (*Limiter, error) {
	if len(criteria) == 0 {
		return nil, &ConfigError{Detail: "at least one criterion must be provided"}
	}
	for _, c := range criteria {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	if s.name == "" {
		s.name = uuid.NewString()
	}

	l := &Limiter{
		criteria: append([]Criterion(nil), criteria...),
		history:  newHistory(historyCapacity(criteria)),
		waiters:  semaphore.NewWeighted(1),
		base:     s,
	}
	if s.safeStart {
		l.history.fill(s.clock.Now())
	}
	return l, nil
}

// Copy produces a new, independent Limiter sharing this one's criteria
// values but with a fresh history, so one configuration template can be
// instantiated per call site without sharing admission state. Overrides
// apply on top of the original's options; everything not overridden keeps
// the original's value. The copy gets a fresh identity unless WithName is
// supplied.
func (l *Limiter) Copy(overrides ...Option) (*Limiter, error) {
	s := l.base
	s.name = ""
	for _, opt := range overrides {
		opt(&s)
	}
	return newLimiter(l.criteria, s)
}

// Name returns the limiter's metrics/journal label.
func (l *Limiter) Name() string {
	return l.base.name
}

// Criteria returns a copy of the limiter's criteria.
func (l *Limiter) Criteria() []Criterion {
	return append([]Criterion(nil), l.criteria...)
}

// HistoryLen returns the number of recorded admissions.
func (l *Limiter) HistoryLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.history.Len()
}

// HistoryCap returns the history capacity.
func (l *Limiter) HistoryCap() int {
	return l.history.Cap()
}

// Admit performs blocking admission.
//
// The wait is computed and the admission slot reserved atomically under the
// limiter's mutex; the sleep then happens outside it, so other callers
// compute their own waits while this one sleeps (serialized decisions,
// parallel sleeping). With throw-on-limit set, a positive wait returns an
// *ExceededError instead of sleeping — the reservation is still committed.
func (l *Limiter) Admit() error {
	now, wait := l.reserve()
	if wait <= 0 {
		l.observe(now, 0, OutcomeImmediate)
		return nil
	}
	if l.base.throwOnLimit {
		l.observe(now, wait, OutcomeRejected)
		return &ExceededError{Wait: wait}
	}
	l.sleeping(1)
	l.base.clock.Sleep(wait)
	l.sleeping(-1)
	l.observe(now, wait, OutcomeDelayed)
	return nil
}

// Wait performs context-aware admission.
//
// Callers queue on a FIFO semaphore, so concurrent goroutines admit in
// strict arrival order. By default the semaphore is held across the sleep:
// the next waiter starts computing only after the current one has finished
// waiting. With WithConcurrentWait the semaphore is released as soon as the
// reservation is committed, before sleeping, letting the next waiter
// compute immediately at the cost of slightly more pessimistic reservations.
//
// Cancellation while queued admits nothing. Cancellation during the sleep
// returns ctx.Err() but does not roll back the reservation: the slot was
// promised and later callers' waits already account for it.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.waiters.Acquire(ctx, 1); err != nil {
		return err
	}
	now, wait := l.reserve()
	if l.base.concurrentWait {
		l.waiters.Release(1)
	} else {
		defer l.waiters.Release(1)
	}

	if wait <= 0 {
		l.observe(now, 0, OutcomeImmediate)
		return nil
	}
	if l.base.throwOnLimit {
		l.observe(now, wait, OutcomeRejected)
		return &ExceededError{Wait: wait}
	}

	l.sleeping(1)
	defer l.sleeping(-1)
	select {
	case <-l.base.clock.After(wait):
		l.observe(now, wait, OutcomeDelayed)
		return nil
	case <-ctx.Done():
		l.observe(now, wait, OutcomeCanceled)
		return ctx.Err()
	}
}

// reserve computes the required wait and commits the admission timestamp in
// one critical section. The reservation carries the post-sleep instant
// (now + wait), so a concurrent caller computing its own wait observes the
// promised schedule rather than only completed admissions.
func (l *Limiter) reserve() (now time.Time, wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now = l.base.clock.Now()

	var required time.Duration
	var waiting bool
	for _, c := range l.criteria {
		if w, ok := c.Evaluate(l.history, now); ok && w > required {
			required = w
			waiting = true
		}
	}

	// Variation pads (or trims) a computed wait, and on its own acts as a
	// flat wait. Anything non-positive collapses to no wait.
	if waiting {
		required += l.base.variation
	} else if l.base.variation != 0 {
		required = l.base.variation
	}
	if required <= 0 {
		required = 0
	}

	if required > 0 {
		l.history.record(now.Add(required))
	} else {
		l.history.record(now)
	}
	return now, required
}

// observe reports a decision to the attached metrics and recorder. Called
// outside the mutex.
func (l *Limiter) observe(at time.Time, wait time.Duration, outcome Outcome) {
	if l.base.metrics != nil {
		l.base.metrics.recordAdmission(l.base.name, wait, outcome)
	}
	if l.base.recorder != nil {
		l.base.recorder.Record(Admission{
			Limiter: l.base.name,
			At:      at,
			Wait:    wait,
			Outcome: outcome,
		})
	}
}

func (l *Limiter) sleeping(delta float64) {
	if l.base.metrics != nil {
		l.base.metrics.waiting.WithLabelValues(l.base.name).Add(delta)
	}
}
