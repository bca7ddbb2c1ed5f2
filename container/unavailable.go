package container

import (
	"context"
	"fmt"

	"github.com/jonwraymond/fleetwatch/status"
)

// Unavailable is the Client used when no runtime could be initialized.
// Every container reports as docker-unavailable.
type Unavailable struct {
	Reason string
}

var _ Client = Unavailable{}

func (u Unavailable) reason() string {
	if u.Reason == "" {
		return "container runtime not configured"
	}
	return u.Reason
}

// Inspect reports ContainerDockerUnavailable.
func (u Unavailable) Inspect(context.Context, string) Observation {
	return Observation{
		State:     status.ContainerDockerUnavailable,
		RawStatus: "docker_unavailable",
		Detail:    u.reason(),
	}
}

// List returns ErrRuntimeUnavailable.
func (u Unavailable) List(context.Context) ([]Summary, error) {
	return nil, fmt.Errorf("%w: %s", ErrRuntimeUnavailable, u.reason())
}

// Resources returns ErrRuntimeUnavailable.
func (u Unavailable) Resources(context.Context, string) (Resources, error) {
	return Resources{}, fmt.Errorf("%w: %s", ErrRuntimeUnavailable, u.reason())
}

// Close is a no-op.
func (Unavailable) Close() error { return nil }
