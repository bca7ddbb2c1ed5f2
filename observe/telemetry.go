package observe

import "fmt"

// Telemetry bundles the primitives the cache and fleet layers consume.
// The zero value is not usable; build one with NewTelemetry or Nop.
type Telemetry struct {
	Tracer  Tracer
	Metrics Metrics
	Logger  Logger
}

// NewTelemetry derives a Telemetry bundle from an Observer.
func NewTelemetry(obs Observer) (Telemetry, error) {
	m, err := NewMetrics(obs.Meter())
	if err != nil {
		return Telemetry{}, fmt.Errorf("observe: create metrics: %w", err)
	}
	return Telemetry{
		Tracer:  NewTracer(obs.Tracer()),
		Metrics: m,
		Logger:  obs.Logger(),
	}, nil
}

// Nop returns a Telemetry bundle that discards everything.
func Nop() Telemetry {
	return Telemetry{
		Tracer:  NopTracer(),
		Metrics: NopMetrics(),
		Logger:  NopLogger(),
	}
}

// OrNop fills any nil member with its no-op counterpart.
func (t Telemetry) OrNop() Telemetry {
	if t.Tracer == nil {
		t.Tracer = NopTracer()
	}
	if t.Metrics == nil {
		t.Metrics = NopMetrics()
	}
	if t.Logger == nil {
		t.Logger = NopLogger()
	}
	return t
}
