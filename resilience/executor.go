package resilience

import (
	"context"
	"time"
)

// Executor guards calls to one dependency with an optional bulkhead, circuit
// breaker and per-call timeout.
type Executor struct {
	bulkhead       *Bulkhead
	circuitBreaker *CircuitBreaker
	timeout        time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithBulkhead adds bulkhead isolation to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	return e.circuitBreaker
}

// Execute runs op through the configured patterns, outermost first:
// bulkhead, circuit breaker, timeout. A timed-out call counts as a breaker
// failure.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Run(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Run is Execute for operations that produce a value.
func Run[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var out T
	call := func(ctx context.Context) error {
		v, err := Call(ctx, e.timeout, op)
		out = v
		return err
	}

	guarded := call
	if e.circuitBreaker != nil {
		guarded = func(ctx context.Context) error {
			return e.circuitBreaker.Execute(ctx, call)
		}
	}
	if e.bulkhead != nil {
		inner := guarded
		guarded = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	err := guarded(ctx)
	return out, err
}
