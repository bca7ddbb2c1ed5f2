package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ServiceMeta identifies a monitored service for telemetry purposes.
type ServiceMeta struct {
	ID            string // registry identifier (required)
	Name          string // display name (optional)
	Category      string // grouping category (optional)
	ContainerName string // runtime container name (optional)
	ProbeKind     string // http|command|container (optional)
}

// SpanName returns the deterministic span name for probing this service.
// Format: fleet.probe.<id>
func (m ServiceMeta) SpanName() string {
	return "fleet.probe." + m.ID
}

func (m ServiceMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("service.id", m.ID)}
	if m.Name != "" {
		attrs = append(attrs, attribute.String("service.name", m.Name))
	}
	if m.Category != "" {
		attrs = append(attrs, attribute.String("service.category", m.Category))
	}
	if m.ContainerName != "" {
		attrs = append(attrs, attribute.String("service.container", m.ContainerName))
	}
	if m.ProbeKind != "" {
		attrs = append(attrs, attribute.String("service.probe", m.ProbeKind))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with probe and fetch span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartProbe starts a span around a single probe of meta.
	StartProbe(ctx context.Context, meta ServiceMeta) (context.Context, trace.Span)

	// StartSpan starts a generic internal span.
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartProbe(ctx context.Context, meta ServiceMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("probe.error", false))
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("probe.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a Tracer whose spans are never recorded.
func NopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartProbe(ctx context.Context, meta ServiceMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) StartSpan(ctx context.Context, name string, _ ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.noop.Start(ctx, name)
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
