package fleet

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/fleetwatch/cache"
	"github.com/jonwraymond/fleetwatch/container"
	"github.com/jonwraymond/fleetwatch/health"
	"github.com/jonwraymond/fleetwatch/observe"
	"github.com/jonwraymond/fleetwatch/registry"
	"github.com/jonwraymond/fleetwatch/resilience"
	"github.com/jonwraymond/fleetwatch/status"
)

// Well-known cache keys.
const (
	KeyServicesAll = "services_all"
	KeySystem      = "system_metrics"
	KeyDocker      = "docker_stats"
)

// DefaultMaxConcurrentProbes caps in-flight probes across the fleet.
const DefaultMaxConcurrentProbes = resilience.DefaultMaxConcurrent

// Config configures a Monitor.
type Config struct {
	// Probe carries the timeouts and transports handed to every prober.
	Probe health.Options

	// MaxConcurrentProbes is the bulkhead size.
	// Default: 8
	MaxConcurrentProbes int

	// ProbeWait is how long a probe waits for a bulkhead slot.
	// Default: Probe.HTTPTimeout, or health.DefaultHTTPTimeout
	ProbeWait time.Duration

	// System tunes the process snapshot classification.
	System SystemConfig

	// DiscoveryPrefix selects the containers Discover reports. Empty
	// matches every container.
	DiscoveryPrefix string

	// Keyer derives keys for filtered views.
	// Default: cache.NewDefaultKeyer()
	Keyer cache.Keyer

	// Telemetry instruments probes and logs refresh failures.
	// Default: observe.Nop()
	Telemetry observe.Telemetry

	// Now is the clock used for timestamps.
	// Default: time.Now
	Now func() time.Time
}

// ServiceStatus is the resolved health report for one service.
type ServiceStatus struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category"`
	Layer         string `json:"layer,omitempty"`
	Port          int    `json:"port,omitempty"`
	ContainerName string `json:"container_name"`

	// ContainerStatus is the runtime's raw status string.
	ContainerStatus string                `json:"container_status"`
	Container       status.ContainerState `json:"container_state"`
	DockerHealth    status.NativeHealth   `json:"docker_health"`

	HealthStatus   health.Outcome `json:"health_status"`
	HealthDetail   string         `json:"health_detail,omitempty"`
	ProbeLatencyMS float64        `json:"probe_latency_ms"`

	Status    status.OverallStatus `json:"status"`
	Error     string               `json:"error,omitempty"`
	CheckedAt time.Time            `json:"checked_at"`

	// Resources is attached on request and never cached with the status.
	Resources *container.Resources `json:"resources,omitempty"`
}

// Monitor answers fleet health queries through a cache.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: queries return *cache.FetchError only when a refresh fails and
//   no earlier value exists; unknown ids return ErrServiceNotFound.
// - Returned slices are copies and may be modified by the caller.
type Monitor struct {
	registry *registry.Registry
	runtime  container.Client
	cache    *cache.Accessor
	probers  map[string]health.Prober
	bulkhead *resilience.Bulkhead
	keyer    cache.Keyer
	system   SystemConfig
	prefix   string
	tel      observe.Telemetry
	now      func() time.Time
	started  time.Time
}

// New builds a Monitor with one instrumented prober per registered service.
// It fails with a *health.ProbeConfigError when a service cannot be probed.
func New(reg *registry.Registry, rt container.Client, acc *cache.Accessor, cfg Config) (*Monitor, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if acc == nil {
		return nil, ErrNilAccessor
	}
	if rt == nil {
		rt = container.Unavailable{}
	}
	if cfg.MaxConcurrentProbes <= 0 {
		cfg.MaxConcurrentProbes = DefaultMaxConcurrentProbes
	}
	if cfg.ProbeWait <= 0 {
		cfg.ProbeWait = cfg.Probe.HTTPTimeout
		if cfg.ProbeWait <= 0 {
			cfg.ProbeWait = health.DefaultHTTPTimeout
		}
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	tel := cfg.Telemetry.OrNop()

	probers := make(map[string]health.Prober, reg.Len())
	for _, svc := range reg.All() {
		p, err := health.NewProber(svc, cfg.Probe)
		if err != nil {
			return nil, err
		}
		probers[svc.ID] = health.Instrument(p, svc.Meta(), tel)
	}

	return &Monitor{
		registry: reg,
		runtime:  rt,
		cache:    acc,
		probers:  probers,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.MaxConcurrentProbes,
			MaxWait:       cfg.ProbeWait,
		}),
		keyer:   cfg.Keyer,
		system:  cfg.System.withDefaults(),
		prefix:  cfg.DiscoveryPrefix,
		tel:     tel,
		now:     cfg.Now,
		started: cfg.Now(),
	}, nil
}

// Registry returns the monitored registry.
func (m *Monitor) Registry() *registry.Registry {
	return m.registry
}

// Uptime returns the time since the Monitor was built.
func (m *Monitor) Uptime() time.Duration {
	return m.now().Sub(m.started)
}

// Service returns the status of one service, cached under health_<id>.
func (m *Monitor) Service(ctx context.Context, id string) (ServiceStatus, error) {
	svc, err := m.registry.Get(id)
	if err != nil {
		return ServiceStatus{}, err
	}
	return cache.Fetch(ctx, m.cache, cache.Key(cache.NamespaceHealth, id), 0, func(ctx context.Context) (ServiceStatus, error) {
		return m.check(ctx, svc)
	})
}

// check inspects the container and, when it is running, probes the service.
// It fails when no probe slot could be obtained or ctx ended, so neither
// result is ever cached as the service's status.
func (m *Monitor) check(ctx context.Context, svc registry.Service) (ServiceStatus, error) {
	st := newServiceStatus(svc)

	obs := m.runtime.Inspect(ctx, svc.ContainerName)
	if err := ctx.Err(); err != nil {
		return ServiceStatus{}, fmt.Errorf("fleet: check %s: %w", svc.ID, err)
	}
	st.Container = obs.State
	st.ContainerStatus = obs.RawStatus
	st.DockerHealth = obs.Native

	res := health.Result{Outcome: health.OutcomeUnknown}
	if obs.State == status.ContainerRunning {
		r, err := m.probe(ctx, svc.ID)
		if err != nil {
			return ServiceStatus{}, err
		}
		res = r
		// An outcome produced by a canceled ctx describes the caller.
		if err := ctx.Err(); err != nil {
			return ServiceStatus{}, fmt.Errorf("fleet: check %s: %w", svc.ID, err)
		}
	} else if obs.Detail != "" {
		st.Error = obs.Detail
	}

	st.HealthStatus = res.Outcome
	st.HealthDetail = res.Detail
	st.ProbeLatencyMS = float64(res.Latency.Microseconds()) / 1000
	st.Status = status.ResolveSignals(status.Signals{
		Container:        obs.State,
		Native:           obs.Native,
		Probe:            res.Outcome,
		ContainerDefined: svc.ContainerDefined,
	})
	st.CheckedAt = m.now()
	return st, nil
}

func (m *Monitor) probe(ctx context.Context, id string) (health.Result, error) {
	if err := m.bulkhead.Acquire(ctx); err != nil {
		return health.Result{}, fmt.Errorf("fleet: probe %s: %w", id, err)
	}
	defer m.bulkhead.Release()
	return m.probers[id].Probe(ctx), nil
}

// Services returns every service status in registry order, cached under
// services_all.
func (m *Monitor) Services(ctx context.Context) ([]ServiceStatus, error) {
	all, err := cache.Fetch(ctx, m.cache, KeyServicesAll, 0, m.gather)
	if err != nil {
		return nil, err
	}
	return append([]ServiceStatus(nil), all...), nil
}

// gather checks every service concurrently. A service whose own refresh
// fails is reported with status Unknown rather than failing the whole list.
func (m *Monitor) gather(ctx context.Context) ([]ServiceStatus, error) {
	services := m.registry.All()
	out := make([]ServiceStatus, len(services))

	g, gctx := errgroup.WithContext(ctx)
	for i, svc := range services {
		g.Go(func() error {
			st, err := m.Service(gctx, svc.ID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				m.tel.Logger.Warn(gctx, "service check failed",
					observe.F("service.id", svc.ID),
					observe.F("error", err),
				)
				st = newServiceStatus(svc)
				st.Error = err.Error()
				st.CheckedAt = m.now()
			}
			out[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Filtered returns the statuses in category. An empty category is Services.
func (m *Monitor) Filtered(ctx context.Context, category string) ([]ServiceStatus, error) {
	if category == "" {
		return m.Services(ctx)
	}
	key, err := m.keyer.Key(cache.NamespaceServices, map[string]string{"category": category})
	if err != nil {
		return nil, err
	}
	list, err := cache.Fetch(ctx, m.cache, key, 0, func(ctx context.Context) ([]ServiceStatus, error) {
		all, err := m.Services(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]ServiceStatus, 0, len(all))
		for _, st := range all {
			if st.Category == category {
				out = append(out, st)
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]ServiceStatus(nil), list...), nil
}

// Resources returns the container resource sample for a service, cached
// under container_<id>.
func (m *Monitor) Resources(ctx context.Context, id string) (container.Resources, error) {
	svc, err := m.registry.Get(id)
	if err != nil {
		return container.Resources{}, err
	}
	return cache.Fetch(ctx, m.cache, cache.Key(cache.NamespaceContainer, id), 0, func(ctx context.Context) (container.Resources, error) {
		return m.runtime.Resources(ctx, svc.ContainerName)
	})
}

// WithResources attaches a resource sample to each status. Sampling
// failures are logged and leave Resources nil.
func (m *Monitor) WithResources(ctx context.Context, statuses []ServiceStatus) []ServiceStatus {
	out := make([]ServiceStatus, len(statuses))
	copy(out, statuses)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultMaxConcurrentProbes)
	for i := range out {
		g.Go(func() error {
			r, err := m.Resources(gctx, out[i].ID)
			if err != nil {
				m.tel.Logger.Debug(gctx, "resource sample unavailable",
					observe.F("service.id", out[i].ID),
					observe.F("error", err),
				)
				return nil
			}
			out[i].Resources = &r
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Invalidate drops the cached status and resources for id along with every
// aggregate view. It returns the number of entries removed.
func (m *Monitor) Invalidate(id string) (int, error) {
	if _, err := m.registry.Get(id); err != nil {
		return 0, err
	}
	n := 0
	if m.cache.Invalidate(cache.Key(cache.NamespaceHealth, id)) {
		n++
	}
	if m.cache.Invalidate(cache.Key(cache.NamespaceContainer, id)) {
		n++
	}
	n += m.cache.InvalidateNamespace(cache.NamespaceServices)
	return n, nil
}

// Clear drops every cached entry.
func (m *Monitor) Clear() int {
	return m.cache.Clear()
}

// CacheStats returns a snapshot of the cache.
func (m *Monitor) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// CacheAge returns how long ago key was stored, if it is present.
func (m *Monitor) CacheAge(key string) (time.Duration, bool) {
	store := m.cache.Store()
	e, ok := store.Peek(key)
	if !ok {
		return 0, false
	}
	return e.Age(store.Now()), true
}

func newServiceStatus(svc registry.Service) ServiceStatus {
	return ServiceStatus{
		ID:            svc.ID,
		Name:          svc.Name,
		Description:   svc.Description,
		Category:      svc.Category,
		Layer:         svc.Layer,
		Port:          svc.Port,
		ContainerName: svc.ContainerName,
		Status:        status.Unknown,
	}
}
