package ratelimit

import (
	"fmt"
	"time"
)

// Criterion is an admission policy evaluated against the call history.
//
// Evaluate reports the wait a caller must observe before being admitted at
// instant now, given the recorded history. The second return is false when
// no wait is required. Implementations must be pure functions of
// (history, now): no side effects and no mutable state, so the limiter can
// evaluate them any number of times under its lock.
type Criterion interface {
	Evaluate(h *History, now time.Time) (time.Duration, bool)

	// Validate reports whether the criterion's parameters are usable.
	// It is checked once, at limiter construction.
	Validate() error
}

// Rate is a constant-pace criterion: Calls admissions every Period. It
// derives a single interval (Period / Calls) that must elapse between any
// two consecutive admissions.
//
// Example: Rate{Calls: 2, Period: time.Second} admits once every 500ms.
type Rate struct {
	// Calls is the number of admissions allowed per Period. Fractional
	// values are permitted: Calls of 0.5 per second admits every 2s.
	Calls float64

	// Period is the span Calls is measured against.
	Period time.Duration
}

// PerSecond returns a Rate of calls admissions per second.
func PerSecond(calls float64) Rate {
	return Rate{Calls: calls, Period: time.Second}
}

// Interval returns the minimum spacing between consecutive admissions.
func (r Rate) Interval() time.Duration {
	return time.Duration(float64(r.Period) / r.Calls)
}

// Evaluate implements Criterion. Only the newest history entry matters: the
// required wait is whatever remains of the interval since that entry.
func (r Rate) Evaluate(h *History, now time.Time) (time.Duration, bool) {
	last, ok := h.Newest()
	if !ok {
		return 0, false
	}
	if elapsed := now.Sub(last); elapsed < r.Interval() {
		return r.Interval() - elapsed, true
	}
	return 0, false
}

// Validate implements Criterion.
func (r Rate) Validate() error {
	if r.Calls <= 0 {
		return &ConfigError{Detail: fmt.Sprintf("rate calls must be positive, got %v", r.Calls)}
	}
	if r.Period <= 0 {
		return &ConfigError{Detail: fmt.Sprintf("rate period must be positive, got %v", r.Period)}
	}
	return nil
}

// Limit is a trailing-window criterion: at most Calls admissions within any
// window of the configured length.
//
// Example: Limit{Calls: 10, Window: 2 * time.Second} admits the first 10
// calls at any speed, then throttles.
type Limit struct {
	// Calls is the maximum number of admissions inside the window.
	Calls int

	// Window is the trailing window length.
	Window time.Duration
}

// Evaluate implements Criterion. The reference entry is the Calls-th most
// recent admission; if it falls inside the trailing window, admission must
// wait until it ages out. With fewer than Calls entries recorded the window
// cannot be full yet.
func (l Limit) Evaluate(h *History, now time.Time) (time.Duration, bool) {
	ref, ok := h.NthNewest(l.Calls)
	if !ok {
		return 0, false
	}
	if elapsed := now.Sub(ref); elapsed < l.Window {
		return l.Window - elapsed, true
	}
	return 0, false
}

// Validate implements Criterion.
func (l Limit) Validate() error {
	if l.Calls <= 0 {
		return &ConfigError{Detail: fmt.Sprintf("limit calls must be positive, got %d", l.Calls)}
	}
	if l.Window <= 0 {
		return &ConfigError{Detail: fmt.Sprintf("limit window must be positive, got %v", l.Window)}
	}
	return nil
}

// historyCapacity returns the number of timestamps the history must retain
// to evaluate every criterion: the largest Limit.Calls, or one slot when
// only Rate criteria are present (Rate inspects the newest entry only).
func historyCapacity(criteria []Criterion) int {
	capacity := 1
	for _, c := range criteria {
		if l, ok := c.(Limit); ok && l.Calls > capacity {
			capacity = l.Calls
		}
	}
	return capacity
}
