package status

import (
	"encoding/json"
	"testing"

	"github.com/jonwraymond/fleetwatch/health"
)

var (
	allOutcomes = []health.Outcome{
		health.OutcomeUnknown, health.OutcomeHealthy, health.OutcomeUnhealthy, health.OutcomeDegraded,
		health.OutcomeUnreachable, health.OutcomeTimeout, health.OutcomeError,
	}
	allNatives = []NativeHealth{NativeNone, NativeHealthy, NativeUnhealthy, NativeStarting}
)

func TestResolve_ConcreteCases(t *testing.T) {
	tests := []struct {
		name      string
		container ContainerState
		native    NativeHealth
		probe     health.Outcome
		want      OverallStatus
	}{
		{"running healthy probe", ContainerRunning, NativeNone, health.OutcomeHealthy, ProductionReady},
		{"not found ignores probe", ContainerNotFound, NativeNone, health.OutcomeUnknown, NotDeployed},
		{"running probe timeout", ContainerRunning, NativeNone, health.OutcomeTimeout, NeedsAttention},
		{"docker unavailable", ContainerDockerUnavailable, NativeNone, health.OutcomeHealthy, Unknown},
		{"running native healthy", ContainerRunning, NativeHealthy, health.OutcomeUnknown, ProductionReady},
		{"native healthy beats failing probe", ContainerRunning, NativeHealthy, health.OutcomeUnreachable, ProductionReady},
		{"running no signals", ContainerRunning, NativeNone, health.OutcomeUnknown, AssumedHealthy},
		{"running probe 503", ContainerRunning, NativeNone, health.OutcomeUnhealthy, NeedsAttention},
		{"running probe degraded", ContainerRunning, NativeNone, health.OutcomeDegraded, NeedsAttention},
		{"running probe error", ContainerRunning, NativeNone, health.OutcomeError, NeedsAttention},
		{"running native unhealthy, probe unknown", ContainerRunning, NativeUnhealthy, health.OutcomeUnknown, Unknown},
		{"running native starting, probe unknown", ContainerRunning, NativeStarting, health.OutcomeUnknown, Unknown},
		{"running native unhealthy, probe unreachable", ContainerRunning, NativeUnhealthy, health.OutcomeUnreachable, NeedsAttention},
		{"container error", ContainerError, NativeHealthy, health.OutcomeHealthy, Error},
		{"exited container", ContainerUnknown, NativeNone, health.OutcomeHealthy, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.container, tt.native, tt.probe); got != tt.want {
				t.Errorf("Resolve(%v, %v, %v) = %v, want %v", tt.container, tt.native, tt.probe, got, tt.want)
			}
		})
	}
}

func TestResolve_ContainerPrecedence(t *testing.T) {
	fixed := map[ContainerState]OverallStatus{
		ContainerDockerUnavailable: Unknown,
		ContainerNotFound:          NotDeployed,
		ContainerError:             Error,
		ContainerUnknown:           Unknown,
	}
	for state, want := range fixed {
		for _, native := range allNatives {
			for _, probe := range allOutcomes {
				if got := Resolve(state, native, probe); got != want {
					t.Errorf("Resolve(%v, %v, %v) = %v, want %v", state, native, probe, got, want)
				}
			}
		}
	}
}

func TestResolve_RunningTable(t *testing.T) {
	for _, native := range allNatives {
		for _, probe := range allOutcomes {
			got := Resolve(ContainerRunning, native, probe)

			var want OverallStatus
			switch {
			case probe == health.OutcomeHealthy || native == NativeHealthy:
				want = ProductionReady
			case probe == health.OutcomeUnknown && native == NativeNone:
				want = AssumedHealthy
			case probe == health.OutcomeUnknown:
				want = Unknown
			default:
				want = NeedsAttention
			}
			if got != want {
				t.Errorf("Resolve(running, %v, %v) = %v, want %v", native, probe, got, want)
			}
		}
	}
}

func TestResolveSignals_ContainerDefined(t *testing.T) {
	got := ResolveSignals(Signals{Container: ContainerRunning, Probe: health.OutcomeUnknown, ContainerDefined: true})
	if got != Running {
		t.Fatalf("ResolveSignals(container defined) = %v, want %v", got, Running)
	}

	got = ResolveSignals(Signals{Container: ContainerNotFound, ContainerDefined: true})
	if got != NotDeployed {
		t.Fatalf("ResolveSignals(container defined, not found) = %v, want %v", got, NotDeployed)
	}

	got = ResolveSignals(Signals{Container: ContainerRunning, Native: NativeHealthy, ContainerDefined: true})
	if got != ProductionReady {
		t.Fatalf("ResolveSignals(container defined, native healthy) = %v, want %v", got, ProductionReady)
	}
}

func TestParseContainerState(t *testing.T) {
	tests := map[string]ContainerState{
		"running":            ContainerRunning,
		" Running ":          ContainerRunning,
		"not_found":          ContainerNotFound,
		"error":              ContainerError,
		"docker_unavailable": ContainerDockerUnavailable,
		"exited":             ContainerUnknown,
		"paused":             ContainerUnknown,
		"restarting":         ContainerUnknown,
		"":                   ContainerUnknown,
	}
	for raw, want := range tests {
		if got := ParseContainerState(raw); got != want {
			t.Errorf("ParseContainerState(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestParseNativeHealth(t *testing.T) {
	tests := map[string]NativeHealth{
		"healthy":   NativeHealthy,
		"unhealthy": NativeUnhealthy,
		"starting":  NativeStarting,
		"":          NativeNone,
		"weird":     NativeNone,
	}
	for raw, want := range tests {
		if got := ParseNativeHealth(raw); got != want {
			t.Errorf("ParseNativeHealth(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestOverallStatus_Text(t *testing.T) {
	want := map[OverallStatus]string{
		ProductionReady: "Production Ready",
		Running:         "Running",
		AssumedHealthy:  "Assumed Healthy",
		NeedsAttention:  "Needs Attention",
		NotDeployed:     "Not Deployed",
		Error:           "Error",
		Unknown:         "Unknown",
	}
	for s, text := range want {
		if s.String() != text {
			t.Errorf("String() = %q, want %q", s.String(), text)
		}
		var back OverallStatus
		if err := back.UnmarshalText([]byte(text)); err != nil || back != s {
			t.Errorf("UnmarshalText(%q) = (%v, %v)", text, back, err)
		}
	}

	b, err := json.Marshal(struct {
		Status    OverallStatus  `json:"status"`
		Container ContainerState `json:"container"`
		Native    NativeHealth   `json:"native"`
	}{NeedsAttention, ContainerNotFound, NativeStarting})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != `{"status":"Needs Attention","container":"not_found","native":"starting"}` {
		t.Errorf("json = %s", got)
	}
}

func TestOverallStatus_Operational(t *testing.T) {
	for _, s := range []OverallStatus{ProductionReady, Running, AssumedHealthy} {
		if !s.Operational() {
			t.Errorf("%v.Operational() = false", s)
		}
	}
	for _, s := range []OverallStatus{NeedsAttention, NotDeployed, Error, Unknown} {
		if s.Operational() {
			t.Errorf("%v.Operational() = true", s)
		}
	}
}
