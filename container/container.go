package container

import (
	"context"
	"math"
	"time"

	"github.com/jonwraymond/fleetwatch/status"
)

// Observation is what the runtime reports about one container.
type Observation struct {
	State     status.ContainerState `json:"state"`
	Native    status.NativeHealth   `json:"native_health"`
	RawStatus string                `json:"raw_status,omitempty"`
	Detail    string                `json:"detail,omitempty"`
}

// Summary is one row of the container listing.
type Summary struct {
	Name    string `json:"name"`
	ShortID string `json:"short_id"`
	State   string `json:"state"`
	Status  string `json:"status,omitempty"`
	Image   string `json:"image,omitempty"`

	// Ports lists published ports as "public->private/proto", or
	// "private/proto" when nothing is published.
	Ports  []string          `json:"ports,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Resources is a one-shot resource sample for a container. Containers that
// are not running report zeroes with their raw status.
type Resources struct {
	Container     string    `json:"container"`
	Status        string    `json:"status"`
	MemoryUsage   uint64    `json:"memory_usage"`
	MemoryLimit   uint64    `json:"memory_limit"`
	MemoryPercent float64   `json:"memory_percent"`
	CPUPercent    float64   `json:"cpu_percent"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Client reads container state from a container runtime.
//
// Contract:
// - Concurrency: implementations are safe for concurrent use.
// - Inspect never fails; failures are folded into Observation.State.
// - List and Resources return ErrRuntimeUnavailable (possibly wrapped) when
//   the runtime cannot be reached.
// - Every call is bounded by a deadline.
type Client interface {
	Inspect(ctx context.Context, name string) Observation
	List(ctx context.Context) ([]Summary, error)
	Resources(ctx context.Context, name string) (Resources, error)
	Close() error
}

// MemoryPercent returns usage as a percentage of limit, rounded to two
// decimals. A zero limit yields zero.
func MemoryPercent(usage, limit uint64) float64 {
	if limit == 0 {
		return 0
	}
	return round2(float64(usage) / float64(limit) * 100)
}

// CPUPercent computes CPU usage from the deltas between two samples:
// (cpuDelta / systemDelta) * cpus * 100, rounded to two decimals. Non-positive
// deltas yield zero, and cpus defaults to 1.
func CPUPercent(cpuDelta, systemDelta float64, cpus int) float64 {
	if cpuDelta <= 0 || systemDelta <= 0 {
		return 0
	}
	if cpus <= 0 {
		cpus = 1
	}
	return round2(cpuDelta / systemDelta * float64(cpus) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
