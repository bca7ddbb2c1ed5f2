package resilience

import (
	"context"
	"errors"
	"time"
)

// Call runs op with a deadline of d and returns its result. If op has not
// returned when the deadline passes, Call returns ErrTimeout without waiting
// for it; op must honor ctx to release its resources. A d <= 0 runs op
// with ctx unchanged.
func Call[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := op(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return r.v, errors.Join(ErrTimeout, r.err)
		}
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

// ExecuteWithTimeout runs op with a deadline of d.
func ExecuteWithTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	_, err := Call(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
