package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through.
	StateClosed State = iota
	// StateOpen means calls are rejected without running.
	StateOpen
	// StateHalfOpen means a limited number of trial calls may run.
	StateHalfOpen
)

// String returns the string representation of the state.
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

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the guarded dependency in state-change callbacks.
	Name string

	// MaxFailures is the number of consecutive failures that opens the circuit.
	// Default: 3
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before a trial call.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the number of trial calls allowed while half-open.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called, without the breaker lock held, after every
	// transition.
	OnStateChange func(name string, from, to State)

	// IsFailure decides whether an error counts against the circuit.
	// Default: every non-nil error.
	IsFailure func(err error) bool

	// Now is the breaker clock.
	// Default: time.Now
	Now func() time.Time
}

// CircuitBreaker stops calling a dependency after repeated failures so
// callers fail fast until it recovers.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	rejected      int64
	openedAt      time.Time
	halfOpenCount int
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 3
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &CircuitBreaker{config: config}
}

// Execute runs op unless the circuit is open, in which case it returns
// ErrCircuitOpen without calling op. A call abandoned because ctx was
// canceled is neither a failure nor a success.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.allow(); err != nil {
		return err
	}
	err := op(ctx)
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		cb.abandon()
		return err
	}
	cb.record(err)
	return err
}

// abandon returns the half-open slot taken by allow.
func (cb *CircuitBreaker) abandon() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateHalfOpen && cb.halfOpenCount > 0 {
		cb.halfOpenCount--
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	from, to := cb.advanceLocked()
	cb.mu.Unlock()
	cb.notify(from, to)
	return to
}

// Reset closes the circuit and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenCount = 0
	cb.mu.Unlock()
	cb.notify(from, StateClosed)
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	from, state := cb.advanceLocked()

	var err error
	switch state {
	case StateOpen:
		cb.rejected++
		err = ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			cb.rejected++
			err = ErrCircuitOpen
		} else {
			cb.halfOpenCount++
		}
	}
	cb.mu.Unlock()

	cb.notify(from, state)
	return err
}

func (cb *CircuitBreaker) record(err error) {
	failed := cb.config.IsFailure(err)

	cb.mu.Lock()
	from := cb.state
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			break
		}
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.tripLocked()
		}
	case StateHalfOpen:
		if failed {
			cb.tripLocked()
		} else {
			cb.state = StateClosed
			cb.failures = 0
		}
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

func (cb *CircuitBreaker) tripLocked() {
	cb.state = StateOpen
	cb.openedAt = cb.config.Now()
}

// advanceLocked moves an open circuit to half-open once ResetTimeout has
// elapsed and returns the state before and after.
func (cb *CircuitBreaker) advanceLocked() (State, State) {
	from := cb.state
	if cb.state == StateOpen && cb.config.Now().Sub(cb.openedAt) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenCount = 0
	}
	return from, cb.state
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

// Metrics returns a snapshot of the breaker.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerMetrics{
		State:    cb.state,
		Failures: cb.failures,
		Rejected: cb.rejected,
		OpenedAt: cb.openedAt,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State    State     `json:"state"`
	Failures int       `json:"failures"`
	Rejected int64     `json:"rejected"`
	OpenedAt time.Time `json:"opened_at"`
}
