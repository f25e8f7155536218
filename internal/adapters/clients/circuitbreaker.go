package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed passes requests through and counts failures.
	StateClosed State = iota

	// StateOpen rejects requests until the cooldown elapses.
	StateOpen

	// StateHalfOpen lets a bounded number of probe requests through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures failure thresholds and recovery probing.
type CircuitBreakerConfig struct {
	// MaxFailures is the consecutive-failure count that opens the circuit.
	MaxFailures int

	// Timeout is the open-state cooldown before probing resumes.
	Timeout time.Duration

	// HalfOpenLimit bounds in-flight probes and is also the number of
	// consecutive probe successes needed to close the circuit.
	HalfOpenLimit int
}

// CircuitBreaker tracks consecutive failures against a downstream service and
// short-circuits requests while it is considered unhealthy.
//
// Closed counts failures and opens at MaxFailures. Open rejects everything
// until Timeout has elapsed since the last failure, then admits probes in
// half-open. HalfOpenLimit consecutive probe successes close the circuit; a
// single probe failure reopens it.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.RWMutex
	state       State
	streak      int // consecutive failures (closed) or successes (half-open)
	inFlight    int // probes currently admitted in half-open
	lastFailure time.Time

	onStateChange func(from, to State)

	clock func() time.Time
}

// NewCircuitBreaker returns a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   cfg,
		state: StateClosed,
		clock: time.Now,
	}
}

// OnStateChange registers a callback invoked on every transition. The callback
// runs on its own goroutine so it may safely call back into the breaker.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Allow reports whether a request may proceed. An expired open-state cooldown
// transitions to half-open here, admitting the caller as the first probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if cb.clock().Sub(cb.lastFailure) < cb.cfg.Timeout {
			return false
		}

		cb.transition(StateHalfOpen)
		cb.inFlight = 1

		return true

	case StateHalfOpen:
		if cb.inFlight >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.inFlight++

		return true

	default:
		return false
	}
}

// RecordSuccess clears the failure streak, and in half-open counts toward
// closing the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.streak = 0

	case StateHalfOpen:
		cb.inFlight--
		cb.streak++

		if cb.streak >= cb.cfg.HalfOpenLimit {
			cb.transition(StateClosed)
		}
	}
}

// RecordFailure counts toward opening the circuit. A failed probe reopens it
// immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = cb.clock()

	switch cb.state {
	case StateClosed:
		cb.streak++

		if cb.streak >= cb.cfg.MaxFailures {
			cb.transition(StateOpen)
		}

	case StateHalfOpen:
		cb.inFlight--
		cb.transition(StateOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state
}

// transition switches state and resets the streak. Caller holds the lock.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to
	cb.streak = 0

	if cb.onStateChange != nil {
		go cb.onStateChange(from, to)
	}
}
