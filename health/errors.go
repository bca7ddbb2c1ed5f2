package health

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable is attached to results whose target refused or failed
	// the connection.
	ErrUnreachable = errors.New("health: target unreachable")

	// ErrTimeout is attached to results whose deadline elapsed.
	ErrTimeout = errors.New("health: probe timeout")

	// ErrCommandFailed is attached to results of commands that exited non-zero.
	ErrCommandFailed = errors.New("health: command failed")

	// ErrProbeConfig is matched by every *ProbeConfigError.
	ErrProbeConfig = errors.New("health: invalid probe configuration")
)

// ProbeConfigError reports a service descriptor that cannot be probed.
type ProbeConfigError struct {
	ServiceID string
	Field     string
	Reason    string
}

func (e *ProbeConfigError) Error() string {
	return fmt.Sprintf("health: service %q: %s: %s", e.ServiceID, e.Field, e.Reason)
}

// Is lets errors.Is match ErrProbeConfig.
func (e *ProbeConfigError) Is(target error) bool {
	return target == ErrProbeConfig
}
