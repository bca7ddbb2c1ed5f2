package health

import (
	"context"
	"fmt"
	"time"
)

// Outcome is the result class of a single probe.
type Outcome int

const (
	// OutcomeUnknown means the probe has no opinion; callers defer to
	// container state.
	OutcomeUnknown Outcome = iota
	// OutcomeHealthy indicates the service answered successfully.
	OutcomeHealthy
	// OutcomeUnhealthy indicates the service answered and reported failure.
	OutcomeUnhealthy
	// OutcomeDegraded indicates the service answered with an unexpected status.
	OutcomeDegraded
	// OutcomeUnreachable indicates the service could not be connected to.
	OutcomeUnreachable
	// OutcomeTimeout indicates the probe deadline elapsed.
	OutcomeTimeout
	// OutcomeError indicates the probe itself failed.
	OutcomeError
)

var outcomeNames = [...]string{
	OutcomeUnknown:     "unknown",
	OutcomeHealthy:     "healthy",
	OutcomeUnhealthy:   "unhealthy",
	OutcomeDegraded:    "degraded",
	OutcomeUnreachable: "unreachable",
	OutcomeTimeout:     "timeout",
	OutcomeError:       "error",
}

// String returns the lower-case name of the outcome.
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(b []byte) error {
	for i, name := range outcomeNames {
		if name == string(b) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("health: unknown outcome %q", string(b))
}

// Failed reports whether the outcome signals a problem with the service.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeUnhealthy, OutcomeDegraded, OutcomeUnreachable, OutcomeTimeout, OutcomeError:
		return true
	default:
		return false
	}
}

// Result contains the outcome of a probe.
type Result struct {
	// Outcome is the result class.
	Outcome Outcome `json:"outcome"`

	// Detail is a short human-readable explanation.
	Detail string `json:"detail,omitempty"`

	// Latency is how long the probe took.
	Latency time.Duration `json:"latency"`

	// Timestamp is when the probe started.
	Timestamp time.Time `json:"timestamp"`

	// StatusCode is the HTTP status for HTTP probes, zero otherwise.
	StatusCode int `json:"status_code,omitempty"`

	// Err is the underlying failure, if any. Not serialized.
	Err error `json:"-"`
}

// Prober performs one active health check.
//
// Contract:
// - Errors: Probe never fails; every failure mode is an Outcome.
// - Context: implementations bound their own work with a deadline and
//   honor cancellation of ctx.
// - Concurrency: implementations are safe for concurrent use.
type Prober interface {
	Probe(ctx context.Context) Result
}

// ProberFunc adapts an ordinary function to a Prober.
type ProberFunc func(ctx context.Context) Result

// Probe calls f(ctx).
func (f ProberFunc) Probe(ctx context.Context) Result {
	return f(ctx)
}

func finish(r Result, start time.Time) Result {
	r.Timestamp = start
	r.Latency = time.Since(start)
	return r
}
