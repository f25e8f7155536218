// Package clients provides the resilient HTTP client used to call downstream
// services, with retries, backoff, and a circuit breaker.
package clients

import "errors"

// Sentinel errors for the transport layer. Callers translate these into
// domain errors; they never reach an HTTP response directly.
var (
	// ErrCircuitOpen is returned while the circuit breaker is rejecting
	// requests for an unhealthy downstream.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once the retry
	// budget is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
