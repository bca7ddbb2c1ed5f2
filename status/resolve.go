package status

import "github.com/jonwraymond/fleetwatch/health"

// Signals are the inputs to ResolveSignals.
type Signals struct {
	Container ContainerState
	Native    NativeHealth
	Probe     health.Outcome

	// ContainerDefined marks services whose status is defined by their
	// container alone; they resolve to Running rather than AssumedHealthy.
	ContainerDefined bool
}

// Resolve combines container state, native health and probe outcome into an
// OverallStatus. It is ResolveSignals without the ContainerDefined flag.
func Resolve(container ContainerState, native NativeHealth, probe health.Outcome) OverallStatus {
	return ResolveSignals(Signals{Container: container, Native: native, Probe: probe})
}

// ResolveSignals evaluates the rules below in order; the first match wins.
//
//  1. docker unavailable                                  -> Unknown
//  2. container not found                                 -> NotDeployed
//  3. container error                                     -> Error
//  4. running, probe or native healthy                    -> ProductionReady
//  5. running, probe unknown, no native health            -> AssumedHealthy
//     (Running when ContainerDefined)
//  6. running, probe unhealthy/degraded/unreachable/
//     timeout/error                                       -> NeedsAttention
//  7. anything else                                       -> Unknown
func ResolveSignals(s Signals) OverallStatus {
	switch s.Container {
	case ContainerDockerUnavailable:
		return Unknown
	case ContainerNotFound:
		return NotDeployed
	case ContainerError:
		return Error
	case ContainerRunning:
		// handled below
	default:
		return Unknown
	}

	if s.Probe == health.OutcomeHealthy || s.Native == NativeHealthy {
		return ProductionReady
	}
	if s.Probe == health.OutcomeUnknown && s.Native == NativeNone {
		if s.ContainerDefined {
			return Running
		}
		return AssumedHealthy
	}
	if s.Probe.Failed() {
		return NeedsAttention
	}
	return Unknown
}
