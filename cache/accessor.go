package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/fleetwatch/observe"
)

// FetchFunc produces a fresh value for a key.
type FetchFunc func(ctx context.Context) (any, error)

// Accessor serves cached values, producing them on miss and falling back to
// the last stored value when the producer fails.
//
// Contract:
// - Concurrency: safe for concurrent use; at most one fetch per key is in
//   flight, concurrent callers for that key share its result.
// - Context: the fetch ignores cancellation of the caller that started it.
//   A caller whose ctx ends stops waiting and gets ctx.Err(); the flight
//   still completes for the others.
// - Locking: fetches run without holding the store lock.
// - Errors: a failed fetch returns *FetchError only when no previous value
//   exists for the key. Failures are never cached and never retried.
type Accessor struct {
	store Store
	group singleflight.Group
	tel   observe.Telemetry
}

// AccessorOption configures an Accessor.
type AccessorOption func(*Accessor)

// WithTelemetry attaches tracing, metrics and logging to the accessor.
func WithTelemetry(tel observe.Telemetry) AccessorOption {
	return func(a *Accessor) {
		a.tel = tel.OrNop()
	}
}

// NewAccessor creates an accessor over store.
func NewAccessor(store Store, opts ...AccessorOption) *Accessor {
	a := &Accessor{
		store: store,
		tel:   observe.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetOrFetch returns the fresh value for key, or runs fetch and stores its
// result under ttl. A ttl <= 0 resolves through the store's namespace table.
//
// When fetch fails and the store still holds a value for key, that value is
// returned with a nil error.
func (a *Accessor) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (any, error) {
	if a == nil || a.store == nil {
		return nil, ErrNilCache
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	ns := Namespace(key)
	if v, ok := a.store.Get(key); ok {
		a.tel.Metrics.RecordCacheLookup(ctx, ns, observe.LookupHit)
		return v, nil
	}
	a.tel.Metrics.RecordCacheLookup(ctx, ns, observe.LookupMiss)

	// The flight is shared, so it must not end when the caller that
	// started it goes away. Fetches are bounded by their own deadlines.
	flight := a.group.DoChan(key, func() (any, error) {
		// A flight for key may have completed between our Get and DoChan.
		if v, ok := a.store.Get(key); ok {
			return v, nil
		}
		return a.fetch(context.WithoutCancel(ctx), key, ttl, fetch)
	})
	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	v, err := res.Val, res.Err
	if err == nil {
		return v, nil
	}

	if prev, ok := a.store.Peek(key); ok {
		a.tel.Metrics.RecordCacheLookup(ctx, ns, observe.LookupStale)
		a.tel.Logger.Warn(ctx, "serving stale cache entry",
			observe.F("key", key),
			observe.F("age_ms", prev.Age(a.store.Now()).Milliseconds()),
			observe.F("error", err),
		)
		return prev.Value, nil
	}

	a.tel.Metrics.RecordCacheLookup(ctx, ns, observe.LookupError)
	return nil, &FetchError{Key: key, Err: err}
}

func (a *Accessor) fetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (any, error) {
	ctx, span := a.tel.Tracer.StartSpan(ctx, "cache.fetch", attribute.String("cache.key", key))
	start := time.Now()

	v, err := fetch(ctx)

	a.tel.Metrics.RecordFetch(ctx, Namespace(key), time.Since(start), err)
	a.tel.Tracer.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	if err := a.store.Set(key, v, ttl); err != nil {
		return nil, err
	}
	return v, nil
}

// Fetch is the typed form of Accessor.GetOrFetch.
func Fetch[T any](ctx context.Context, a *Accessor, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := a.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &FetchError{Key: key, Err: errTypeMismatch(v, zero)}
	}
	return typed, nil
}

// Invalidate drops key so the next read refreshes it.
func (a *Accessor) Invalidate(key string) bool {
	return a.store.Invalidate(key)
}

// InvalidateNamespace drops every key in namespace.
func (a *Accessor) InvalidateNamespace(namespace string) int {
	return a.store.InvalidateNamespace(namespace)
}

// Clear drops every entry and returns the number removed.
func (a *Accessor) Clear() int {
	return a.store.Clear()
}

// Stats returns a snapshot of the underlying store at the store clock.
func (a *Accessor) Stats() Stats {
	return a.store.Stats(a.store.Now())
}

// Store returns the underlying store.
func (a *Accessor) Store() Store {
	return a.store
}
