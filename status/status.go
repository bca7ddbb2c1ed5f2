package status

import (
	"fmt"
	"strings"
)

// ContainerState is the coarse runtime state of a service's container.
type ContainerState int

const (
	// ContainerUnknown covers every runtime status other than the ones below,
	// such as exited, paused, restarting or created.
	ContainerUnknown ContainerState = iota
	// ContainerRunning means the container is running.
	ContainerRunning
	// ContainerNotFound means no container with the expected name exists.
	ContainerNotFound
	// ContainerError means inspecting the container failed.
	ContainerError
	// ContainerDockerUnavailable means the runtime client is not available.
	ContainerDockerUnavailable
)

var containerStateNames = [...]string{
	ContainerUnknown:           "unknown",
	ContainerRunning:           "running",
	ContainerNotFound:          "not_found",
	ContainerError:             "error",
	ContainerDockerUnavailable: "docker_unavailable",
}

// String returns the snake_case name of the state.
func (s ContainerState) String() string {
	if s < 0 || int(s) >= len(containerStateNames) {
		return "unknown"
	}
	return containerStateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s ContainerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ContainerState) UnmarshalText(b []byte) error {
	*s = ParseContainerState(string(b))
	return nil
}

// ParseContainerState maps a runtime status string onto a ContainerState.
// Unrecognized statuses map to ContainerUnknown.
func ParseContainerState(raw string) ContainerState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "running":
		return ContainerRunning
	case "not_found":
		return ContainerNotFound
	case "error":
		return ContainerError
	case "docker_unavailable":
		return ContainerDockerUnavailable
	default:
		return ContainerUnknown
	}
}

// NativeHealth is the runtime's own health attribute for a container.
type NativeHealth int

const (
	// NativeNone means the container defines no health check.
	NativeNone NativeHealth = iota
	NativeHealthy
	NativeUnhealthy
	NativeStarting
)

var nativeHealthNames = [...]string{
	NativeNone:      "none",
	NativeHealthy:   "healthy",
	NativeUnhealthy: "unhealthy",
	NativeStarting:  "starting",
}

func (h NativeHealth) String() string {
	if h < 0 || int(h) >= len(nativeHealthNames) {
		return "none"
	}
	return nativeHealthNames[h]
}

// MarshalText implements encoding.TextMarshaler.
func (h NativeHealth) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *NativeHealth) UnmarshalText(b []byte) error {
	*h = ParseNativeHealth(string(b))
	return nil
}

// ParseNativeHealth maps a runtime health string onto a NativeHealth.
// Empty and unrecognized values map to NativeNone.
func ParseNativeHealth(raw string) NativeHealth {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "healthy":
		return NativeHealthy
	case "unhealthy":
		return NativeUnhealthy
	case "starting":
		return NativeStarting
	default:
		return NativeNone
	}
}

// OverallStatus is the single externally visible classification of a
// service.
type OverallStatus int

const (
	Unknown OverallStatus = iota
	ProductionReady
	Running
	AssumedHealthy
	NeedsAttention
	NotDeployed
	Error
)

var overallNames = [...]string{
	Unknown:         "Unknown",
	ProductionReady: "Production Ready",
	Running:         "Running",
	AssumedHealthy:  "Assumed Healthy",
	NeedsAttention:  "Needs Attention",
	NotDeployed:     "Not Deployed",
	Error:           "Error",
}

// String returns the display form, for example "Production Ready".
func (s OverallStatus) String() string {
	if s < 0 || int(s) >= len(overallNames) {
		return "Unknown"
	}
	return overallNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s OverallStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *OverallStatus) UnmarshalText(b []byte) error {
	for i, name := range overallNames {
		if name == string(b) {
			*s = OverallStatus(i)
			return nil
		}
	}
	return fmt.Errorf("status: unknown overall status %q", string(b))
}

// Operational reports whether the service is up from the operator's point
// of view.
func (s OverallStatus) Operational() bool {
	switch s {
	case ProductionReady, Running, AssumedHealthy:
		return true
	default:
		return false
	}
}
