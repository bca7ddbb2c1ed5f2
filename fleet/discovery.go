package fleet

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/fleetwatch/observe"
)

// DiscoveredContainer is a runtime container matched by the discovery prefix.
type DiscoveredContainer struct {
	ContainerName string            `json:"container_name"`
	Status        string            `json:"status"`
	Image         string            `json:"image,omitempty"`
	Ports         []string          `json:"ports,omitempty"`
	Labels        map[string]string `json:"labels,omitempty"`

	// ServiceID names the registered service watching this container.
	// Empty means the container runs outside the registry.
	ServiceID string `json:"service_id,omitempty"`
}

// Discovery compares what the runtime is running with what is registered.
type Discovery struct {
	Discovered map[string]DiscoveredContainer `json:"discovered_services"`
	Configured []string                       `json:"configured_services"`

	// Unregistered lists discovered names no service watches.
	Unregistered []string `json:"unregistered,omitempty"`

	// Error is set when the runtime listing failed and no earlier listing
	// exists. Configured is still filled in.
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Discover lists the containers whose name starts with the discovery prefix
// and marks which of them a registered service watches. It reads the
// docker_stats listing, so it shares that entry's TTL and fallback.
func (m *Monitor) Discover(ctx context.Context) Discovery {
	out := Discovery{
		Discovered: make(map[string]DiscoveredContainer),
		Configured: m.registry.IDs(),
		Timestamp:  m.now(),
	}

	stats, err := m.Docker(ctx)
	if err != nil {
		m.tel.Logger.Warn(ctx, "container discovery failed", observe.F("error", err))
		out.Error = err.Error()
		return out
	}

	owners := make(map[string]string, m.registry.Len())
	for _, svc := range m.registry.All() {
		owners[svc.ContainerName] = svc.ID
	}

	for _, c := range stats.Containers {
		if !strings.HasPrefix(c.Name, m.prefix) {
			continue
		}
		name := discoveredName(c.Name, m.prefix)
		out.Discovered[name] = DiscoveredContainer{
			ContainerName: c.Name,
			Status:        c.State,
			Image:         c.Image,
			Ports:         c.Ports,
			Labels:        c.Labels,
			ServiceID:     owners[c.Name],
		}
		if owners[c.Name] == "" {
			out.Unregistered = append(out.Unregistered, name)
		}
	}
	slices.Sort(out.Unregistered)
	return out
}

// discoveredName strips the prefix and a trailing compose replica number,
// so "hub-ollama-1" with prefix "hub-" becomes "ollama".
func discoveredName(container, prefix string) string {
	name := strings.TrimPrefix(container, prefix)
	if i := strings.LastIndexByte(name, '-'); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	return name
}
