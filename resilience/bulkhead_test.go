package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewBulkhead_Defaults(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})
	if got := b.Metrics().MaxConcurrent; got != DefaultMaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrent)
	}
}

func TestBulkhead_RejectsWithoutWait(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := b.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Fatalf("second Acquire() error = %v, want %v", err, ErrBulkheadFull)
	}
	b.Release()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() after Release error = %v", err)
	}
	b.Release()

	if got := b.Metrics().Rejected; got != 1 {
		t.Errorf("Rejected = %d, want 1", got)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Release()
	}()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() with wait error = %v", err)
	}
	b.Release()
}

func TestBulkhead_WaitTimesOut(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	ctx := context.Background()

	_ = b.Acquire(ctx)
	defer b.Release()
	if err := b.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Fatalf("Acquire() error = %v, want %v", err, ErrBulkheadFull)
	}
}

func TestBulkhead_ContextCancelled(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Minute})
	_ = b.Acquire(context.Background())
	defer b.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Acquire() error = %v, want %v", err, context.Canceled)
	}
}

func TestBulkhead_CapsConcurrency(t *testing.T) {
	const limit = 3
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: limit, MaxWait: 5 * time.Second})

	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func(context.Context) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak.Load() > limit {
		t.Fatalf("peak concurrency = %d, want <= %d", peak.Load(), limit)
	}
	m := b.Metrics()
	if m.Active != 0 || m.MaxActive > limit || m.Available != limit {
		t.Fatalf("Metrics() = %+v", m)
	}
}
