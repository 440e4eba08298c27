package journal

import (
	"time"

	"github.com/google/uuid"

	"quell-hq/quell/pkg/ratelimit"
)

// Entry is one journaled admission decision.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string

	// Limiter is the name of the limiter that made the decision.
	Limiter string

	// At is when the decision was computed.
	At time.Time

	// Wait is the computed wait (zero for immediate admissions).
	Wait time.Duration

	// Outcome is the resolution: immediate, delayed, rejected or canceled.
	Outcome string
}

// newEntry converts a resolved admission into a journal entry.
func newEntry(a ratelimit.Admission) Entry {
	return Entry{
		ID:      uuid.NewString(),
		Limiter: a.Limiter,
		At:      a.At,
		Wait:    a.Wait,
		Outcome: string(a.Outcome),
	}
}

// Backend is a journal destination. Backends implement ratelimit.Recorder
// so they can be attached directly via ratelimit.WithRecorder; Record must
// not block the admission path.
type Backend interface {
	ratelimit.Recorder

	// Close flushes buffered entries and releases resources. The backend
	// must not be used afterwards.
	Close() error
}
