package health

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/fleetwatch/observe"
)

// Instrument wraps p so every probe is traced, counted and timed.
func Instrument(p Prober, meta observe.ServiceMeta, tel observe.Telemetry) Prober {
	tel = tel.OrNop()
	return &instrumented{
		next: p,
		meta: meta,
		tel:  tel,
		log:  tel.Logger.WithService(meta),
	}
}

type instrumented struct {
	next Prober
	meta observe.ServiceMeta
	tel  observe.Telemetry
	log  observe.Logger
}

func (i *instrumented) Probe(ctx context.Context) Result {
	ctx, span := i.tel.Tracer.StartProbe(ctx, i.meta)
	r := i.next.Probe(ctx)

	span.SetAttributes(attribute.String("probe.outcome", r.Outcome.String()))
	if r.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.status_code", r.StatusCode))
	}
	i.tel.Tracer.EndSpan(span, r.Err)
	i.tel.Metrics.RecordProbe(ctx, i.meta, r.Outcome.String(), r.Latency)

	fields := []observe.Field{
		observe.F("outcome", r.Outcome.String()),
		observe.F("latency_ms", r.Latency.Milliseconds()),
	}
	if r.Outcome.Failed() {
		i.log.Warn(ctx, "probe failed", append(fields, observe.F("detail", r.Detail))...)
	} else {
		i.log.Debug(ctx, "probe completed", fields...)
	}
	return r
}
