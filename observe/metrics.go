package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cache lookup results reported to RecordCacheLookup.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupStale = "stale"
	LookupError = "error"
)

// Metrics records probe and cache metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordProbe records one probe of meta with its outcome label and latency.
	RecordProbe(ctx context.Context, meta ServiceMeta, outcome string, latency time.Duration)

	// RecordCacheLookup records how a cache-backed read was satisfied.
	RecordCacheLookup(ctx context.Context, namespace, result string)

	// RecordFetch records one producer invocation behind the cache.
	RecordFetch(ctx context.Context, namespace string, duration time.Duration, err error)

	// RecordSweep records the number of entries removed by one sweep.
	RecordSweep(ctx context.Context, removed int)
}

type metricsImpl struct {
	probeCount   metric.Int64Counter
	probeLatency metric.Float64Histogram
	lookupCount  metric.Int64Counter
	fetchCount   metric.Int64Counter
	fetchErrors  metric.Int64Counter
	fetchLatency metric.Float64Histogram
	sweepRemoved metric.Int64Counter
}

// NewMetrics creates the fleet instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	probeCount, err := meter.Int64Counter(
		"fleet.probe.total",
		metric.WithDescription("Total number of service probes"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	probeLatency, err := meter.Float64Histogram(
		"fleet.probe.duration_ms",
		metric.WithDescription("Service probe latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	lookupCount, err := meter.Int64Counter(
		"fleet.cache.lookups",
		metric.WithDescription("Cache-backed reads by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	fetchCount, err := meter.Int64Counter(
		"fleet.cache.fetch.total",
		metric.WithDescription("Producer invocations behind the cache"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	fetchErrors, err := meter.Int64Counter(
		"fleet.cache.fetch.errors",
		metric.WithDescription("Failed producer invocations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	fetchLatency, err := meter.Float64Histogram(
		"fleet.cache.fetch.duration_ms",
		metric.WithDescription("Producer latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	sweepRemoved, err := meter.Int64Counter(
		"fleet.cache.swept",
		metric.WithDescription("Expired entries removed by the janitor"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		probeCount:   probeCount,
		probeLatency: probeLatency,
		lookupCount:  lookupCount,
		fetchCount:   fetchCount,
		fetchErrors:  fetchErrors,
		fetchLatency: fetchLatency,
		sweepRemoved: sweepRemoved,
	}, nil
}

func (m *metricsImpl) RecordProbe(ctx context.Context, meta ServiceMeta, outcome string, latency time.Duration) {
	attrs := append(meta.attributes(), attribute.String("probe.outcome", outcome))
	opt := metric.WithAttributes(attrs...)
	m.probeCount.Add(ctx, 1, opt)
	m.probeLatency.Record(ctx, float64(latency.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, namespace, result string) {
	m.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.namespace", namespace),
		attribute.String("cache.result", result),
	))
}

func (m *metricsImpl) RecordFetch(ctx context.Context, namespace string, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("cache.namespace", namespace))
	m.fetchCount.Add(ctx, 1, opt)
	if err != nil {
		m.fetchErrors.Add(ctx, 1, opt)
	}
	m.fetchLatency.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordSweep(ctx context.Context, removed int) {
	m.sweepRemoved.Add(ctx, int64(removed))
}

type noopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordProbe(context.Context, ServiceMeta, string, time.Duration) {}
func (noopMetrics) RecordCacheLookup(context.Context, string, string)              {}
func (noopMetrics) RecordFetch(context.Context, string, time.Duration, error)      {}
func (noopMetrics) RecordSweep(context.Context, int)                               {}

var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = noopMetrics{}
)
