package resilience

import (
	"context"
	"testing"
	"time"
)

// BenchmarkCircuitBreaker_Execute measures the closed-circuit overhead.
func BenchmarkCircuitBreaker_Execute(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	ctx := context.Background()
	op := func(context.Context) error { return nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(ctx, op)
	}
}

// BenchmarkBulkhead_Execute measures slot acquire and release.
func BenchmarkBulkhead_Execute(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 8, MaxWait: time.Second})
	ctx := context.Background()
	op := func(context.Context) error { return nil }

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = bh.Execute(ctx, op)
		}
	})
}

// BenchmarkRun_WithTimeout measures the goroutine cost of a bounded call.
func BenchmarkRun_WithTimeout(b *testing.B) {
	e := NewExecutor(WithTimeout(time.Second), WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{})))
	ctx := context.Background()
	op := func(context.Context) (int, error) { return 1, nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Run(ctx, e, op)
	}
}
