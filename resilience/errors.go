package resilience

import "errors"

var (
	// ErrCircuitOpen rejects calls while the breaker cools down.
	ErrCircuitOpen = errors.New("resilience: circuit open")

	// ErrBulkheadFull means no slot freed up within MaxWait.
	ErrBulkheadFull = errors.New("resilience: no free slot")

	// ErrTimeout means the call outlived its deadline.
	ErrTimeout = errors.New("resilience: deadline exceeded")
)
