package ratelimit

import "time"

// Outcome classifies how an admission was resolved.
type Outcome string

const (
	// OutcomeImmediate means no wait was required.
	OutcomeImmediate Outcome = "immediate"

	// OutcomeDelayed means the caller slept for the computed wait.
	OutcomeDelayed Outcome = "delayed"

	// OutcomeRejected means throw-on-limit turned the wait into an
	// *ExceededError. The reservation was still committed.
	OutcomeRejected Outcome = "rejected"

	// OutcomeCanceled means the caller's context was canceled during the
	// wait. The reservation was still committed.
	OutcomeCanceled Outcome = "canceled"
)

// Admission describes one resolved admission decision. Instances are
// handed to the configured Recorder after the limiter's mutex has been
// released.
type Admission struct {
	// Limiter is the name of the limiter that made the decision.
	Limiter string

	// At is the clock reading when the decision was computed.
	At time.Time

	// Wait is the computed wait (zero for immediate admissions).
	Wait time.Duration

	// Outcome is how the decision was resolved.
	Outcome Outcome
}

// Recorder receives resolved admission decisions, e.g. for journaling.
// Implementations must be safe for concurrent use and should not block:
// Record is called on the admission path.
type Recorder interface {
	Record(a Admission)
}
