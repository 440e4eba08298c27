// Package ratelimit enforces call-rate constraints on arbitrary operations.
//
// # Overview
//
// A Limiter owns one or more admission criteria and a bounded history of
// admission timestamps. Before a rate-limited operation runs, the caller asks
// the limiter for admission; the limiter computes the wait each criterion
// requires against the recorded history, reserves a slot for the admission,
// and then either sleeps, returns immediately, or rejects with the computed
// wait depending on configuration.
//
// Two criteria are provided:
//
//   - Rate: a constant pace, e.g. 2 calls per second means one admission
//     every 500ms.
//   - Limit: a trailing-window cap, e.g. at most 20 admissions within any
//     10-second window.
//
// A single Limiter combines any number of criteria; the largest required
// wait wins.
//
// # Admission
//
// Admit blocks the calling goroutine:
//
//	rl, err := ratelimit.New([]ratelimit.Criterion{
//	    ratelimit.Rate{Calls: 2, Period: time.Second},
//	    ratelimit.Limit{Calls: 20, Window: 10 * time.Second},
//	})
//	if err != nil { ... }
//
//	if err := rl.Admit(); err != nil { ... }
//	callUpstream()
//
// Wait is the context-aware variant for concurrent callers. Waiters queue in
// arrival order and may be canceled while waiting:
//
//	if err := rl.Wait(ctx); err != nil { ... }
//	callUpstream(ctx)
//
// Both entry points share the same reservation discipline: the admission
// timestamp is written into the history before the sleep happens, so a
// second caller computing its own wait already sees the promised slot. This
// is what keeps N concurrent callers from all reading an empty window and
// all proceeding. The cost is slight pessimism: a canceled waiter still
// spends its reserved slot.
//
// # Attaching limiters to operations
//
// A Binding pairs an operation with an optional limiter and an enabled flag,
// and a Bundle maps operation names to limiters for bulk application. See
// Binding and Bundle.
//
// # Thread safety
//
// All types in this package are safe for concurrent use. A single Limiter
// may be shared by plain blocking callers and context-aware callers at the
// same time; both populations serialize on the same history.
package ratelimit
