package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// Error sentinels for the package. Structured error types below unwrap to
// these so callers can branch with errors.Is.
var (
	// ErrInvalidConfig is returned when a limiter is constructed with no
	// criteria or with a criterion whose parameters are out of range.
	ErrInvalidConfig = errors.New("invalid rate limiter configuration")

	// ErrRateLimitExceeded is returned instead of sleeping when a limiter
	// is configured with throw-on-limit and admission would require a wait.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrNotLimitable is returned when a bundle is applied to a target that
	// does not expose a binding for one of the bundle's operation names.
	// This signals a wiring bug, not an admission decision; callers should
	// not retry it.
	ErrNotLimitable = errors.New("operation is not set up for rate limiting")
)

// ConfigError reports a construction-time configuration problem. It is
// never returned mid-operation: a limiter that failed construction simply
// does not exist.
type ConfigError struct {
	// Detail describes what was wrong with the configuration.
	Detail string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid rate limiter configuration: %s", e.Detail)
}

// Unwrap lets errors.Is(err, ErrInvalidConfig) match.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ExceededError is the admission-denied signal raised by throw-on-limit
// limiters. It is expected, recoverable control flow rather than a defect:
// the carried wait tells the caller how long to back off before retrying.
//
// By the time this error is returned the admission slot has already been
// reserved in the history; the reservation is deliberately not rolled back,
// so an immediate retry observes it.
type ExceededError struct {
	// Wait is the sleep the limiter would have performed.
	Wait time.Duration
}

// Error implements the error interface.
func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: retry in %v", e.Wait)
}

// Unwrap lets errors.Is(err, ErrRateLimitExceeded) match.
func (e *ExceededError) Unwrap() error {
	return ErrRateLimitExceeded
}
