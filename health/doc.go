// Package health implements the active probes fleetwatch runs against
// services.
//
// A Prober performs one bounded check and always returns a Result; failures
// are expressed as an Outcome rather than an error. Three probers cover the
// fleet:
//
//   - HTTPProber requests a health URL with GET or HEAD.
//   - CommandProber runs a readiness command in the service container,
//     for example pg_isready.
//   - ContainerOnlyProber reports OutcomeUnknown for services whose health
//     is defined by their container alone.
//
// # Basic Usage
//
//	p, err := health.NewProber(svc, health.Options{HTTPTimeout: 5 * time.Second})
//	if err != nil {
//	    return err // *health.ProbeConfigError
//	}
//	p = health.Instrument(p, svc.Meta(), tel)
//	r := p.Probe(ctx)
//	fmt.Println(r.Outcome, r.Detail, r.Latency)
//
// # HTTP Status Mapping
//
// 2xx responses are Healthy. 502, 503 and 504 are Unhealthy. Other codes are
// Degraded unless Options.Collapse is set, in which case they are Unhealthy.
// Refused connections and DNS failures are Unreachable; an elapsed deadline
// is Timeout.
package health
