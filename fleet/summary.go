package fleet

import (
	"context"
	"time"

	"github.com/jonwraymond/fleetwatch/status"
)

// Breakdown counts services within one category or layer.
type Breakdown struct {
	Total   int `json:"total"`
	Healthy int `json:"healthy"`
	Running int `json:"running"`
}

// Summary is the fleet-wide rollup served by the metrics endpoint.
// Healthy means ProductionReady; Running means the container is running.
type Summary struct {
	TotalServices       int                  `json:"total_services"`
	HealthyServices     int                  `json:"healthy_services"`
	OperationalServices int                  `json:"operational_services"`
	RunningContainers   int                  `json:"running_containers"`
	ErrorServices       int                  `json:"error_services"`
	NeedsAttention      int                  `json:"needs_attention"`
	NotDeployed         int                  `json:"not_deployed"`
	ByStatus            map[string]int       `json:"by_status"`
	Categories          map[string]Breakdown `json:"categories"`
	Layers              map[string]Breakdown `json:"layers"`
	Uptime              float64              `json:"uptime"`
	Timestamp           time.Time            `json:"timestamp"`
}

// Summarize rolls statuses up into a Summary stamped with now.
func Summarize(statuses []ServiceStatus, now time.Time) Summary {
	s := Summary{
		TotalServices: len(statuses),
		ByStatus:      make(map[string]int),
		Categories:    make(map[string]Breakdown),
		Layers:        make(map[string]Breakdown),
		Timestamp:     now,
	}
	for _, st := range statuses {
		healthy := st.Status == status.ProductionReady
		running := st.Container == status.ContainerRunning

		s.ByStatus[st.Status.String()]++
		if healthy {
			s.HealthyServices++
		}
		if st.Status.Operational() {
			s.OperationalServices++
		}
		if running {
			s.RunningContainers++
		}
		switch st.Status {
		case status.Error:
			s.ErrorServices++
		case status.NeedsAttention:
			s.NeedsAttention++
		case status.NotDeployed:
			s.NotDeployed++
		}

		s.Categories[st.Category] = s.Categories[st.Category].add(healthy, running)
		if st.Layer != "" {
			s.Layers[st.Layer] = s.Layers[st.Layer].add(healthy, running)
		}
	}
	return s
}

func (b Breakdown) add(healthy, running bool) Breakdown {
	b.Total++
	if healthy {
		b.Healthy++
	}
	if running {
		b.Running++
	}
	return b
}

// Summary rolls up the cached service statuses.
func (m *Monitor) Summary(ctx context.Context) (Summary, error) {
	all, err := m.Services(ctx)
	if err != nil {
		return Summary{}, err
	}
	s := Summarize(all, m.now())
	s.Uptime = m.Uptime().Seconds()
	return s, nil
}
