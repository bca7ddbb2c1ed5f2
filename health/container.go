package health

import (
	"context"
	"time"
)

// ContainerOnlyProber is used for services with no independent health
// signal. It always reports OutcomeUnknown so resolution defers to the
// container state.
type ContainerOnlyProber struct{}

// Probe returns OutcomeUnknown.
func (ContainerOnlyProber) Probe(context.Context) Result {
	return Result{
		Outcome:   OutcomeUnknown,
		Detail:    "defer to container state",
		Timestamp: time.Now(),
	}
}
