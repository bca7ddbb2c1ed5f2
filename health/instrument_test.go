package health

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/fleetwatch/observe"
)

func TestInstrument_RecordsSpanAndMetric(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	tel := observe.Telemetry{Tracer: observe.NewTracer(tp.Tracer("test")), Metrics: m}

	meta := observe.ServiceMeta{ID: "searxng", Category: "search", ProbeKind: "http"}
	p := Instrument(ProberFunc(func(context.Context) Result {
		return Result{Outcome: OutcomeDegraded, StatusCode: 404, Err: nil}
	}), meta, tel)

	if got := p.Probe(context.Background()).Outcome; got != OutcomeDegraded {
		t.Fatalf("Outcome = %v, want degraded", got)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "fleet.probe.searxng" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	var outcome string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "probe.outcome" {
			outcome = kv.Value.AsString()
		}
	}
	if outcome != "degraded" {
		t.Errorf("probe.outcome = %q, want degraded", outcome)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "fleet.probe.total" {
				continue
			}
			for _, dp := range md.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 1 {
		t.Errorf("fleet.probe.total = %d, want 1", total)
	}
}

func TestInstrument_NilMembersUseNop(t *testing.T) {
	p := Instrument(ContainerOnlyProber{}, observe.ServiceMeta{ID: "watchtower"}, observe.Telemetry{})
	if got := p.Probe(context.Background()).Outcome; got != OutcomeUnknown {
		t.Fatalf("Outcome = %v, want unknown", got)
	}
}
