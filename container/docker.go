package container

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	dockertypes "github.com/docker/docker/api/types"
	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"github.com/jonwraymond/fleetwatch/observe"
	"github.com/jonwraymond/fleetwatch/resilience"
	"github.com/jonwraymond/fleetwatch/status"
)

// DefaultCallTimeout bounds every runtime call.
const DefaultCallTimeout = 5 * time.Second

// DockerConfig configures the Docker client.
type DockerConfig struct {
	// Host is the daemon address, for example unix:///var/run/docker.sock.
	// Default: taken from DOCKER_HOST and related environment variables.
	Host string

	// APIVersion pins the API version. Empty negotiates with the daemon.
	APIVersion string

	// Timeout bounds each call.
	// Default: 5 seconds
	Timeout time.Duration

	// BreakerFailures is the number of consecutive daemon failures before
	// calls fail fast.
	// Default: 3
	BreakerFailures int

	// BreakerReset is how long calls fail fast before the daemon is tried
	// again.
	// Default: 30 seconds
	BreakerReset time.Duration

	// Logger receives circuit state changes.
	Logger observe.Logger
}

// Docker reads container state from a Docker daemon.
type Docker struct {
	api     *client.Client
	exec    *resilience.Executor
	breaker *resilience.CircuitBreaker
	log     observe.Logger
	now     func() time.Time
}

var _ Client = (*Docker)(nil)

// NewDocker connects a client to the daemon. No request is made until the
// first call.
func NewDocker(cfg DockerConfig) (*Docker, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	opts := []client.Opt{client.FromEnv}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}
	if cfg.APIVersion != "" {
		opts = append(opts, client.WithVersion(cfg.APIVersion))
	} else {
		opts = append(opts, client.WithAPIVersionNegotiation())
	}
	api, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("container: create docker client: %w", err)
	}

	log := cfg.Logger
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:         "docker",
		MaxFailures:  cfg.BreakerFailures,
		ResetTimeout: cfg.BreakerReset,
		IsFailure: func(err error) bool {
			// Callers that went away say nothing about the daemon.
			return err != nil && !errdefs.IsNotFound(err) && !errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn(context.Background(), "container runtime circuit changed",
				observe.F("runtime", name),
				observe.F("from", from.String()),
				observe.F("to", to.String()))
		},
	})

	return &Docker{
		api:     api,
		breaker: breaker,
		exec: resilience.NewExecutor(
			resilience.WithCircuitBreaker(breaker),
			resilience.WithTimeout(cfg.Timeout),
		),
		log: log,
		now: time.Now,
	}, nil
}

// Breaker exposes the circuit guarding the daemon.
func (d *Docker) Breaker() *resilience.CircuitBreaker {
	return d.breaker
}

type inspected struct {
	status string
	health string
}

// Inspect reports the state and native health of the named container.
func (d *Docker) Inspect(ctx context.Context, name string) Observation {
	res, err := resilience.Run(ctx, d.exec, func(ctx context.Context) (inspected, error) {
		info, err := d.api.ContainerInspect(ctx, name)
		if err != nil {
			return inspected{}, err
		}
		var out inspected
		if info.ContainerJSONBase != nil && info.State != nil {
			out.status = info.State.Status
			if info.State.Health != nil {
				out.health = info.State.Health.Status
			}
		}
		return out, nil
	})
	if err != nil {
		return d.failedObservation(ctx, name, err)
	}
	return Observation{
		State:     status.ParseContainerState(res.status),
		Native:    status.ParseNativeHealth(res.health),
		RawStatus: res.status,
	}
}

func (d *Docker) failedObservation(ctx context.Context, name string, err error) Observation {
	switch {
	case errors.Is(err, context.Canceled):
		return Observation{State: status.ContainerUnknown, RawStatus: "unknown", Detail: "inspect canceled"}
	case errdefs.IsNotFound(err):
		return Observation{State: status.ContainerNotFound, RawStatus: "not_found", Detail: "container not found"}
	case daemonUnreachable(err):
		return Observation{State: status.ContainerDockerUnavailable, RawStatus: "docker_unavailable", Detail: err.Error()}
	default:
		d.log.Debug(ctx, "container inspect failed", observe.F("container", name), observe.F("error", err))
		return Observation{State: status.ContainerError, RawStatus: "error", Detail: err.Error()}
	}
}

func portStrings(ports []dockertypes.Port) []string {
	if len(ports) == 0 {
		return nil
	}
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		if p.PublicPort != 0 {
			out = append(out, fmt.Sprintf("%d->%d/%s", p.PublicPort, p.PrivatePort, p.Type))
			continue
		}
		out = append(out, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
	}
	return out
}

// List returns every container known to the daemon, running or not.
func (d *Docker) List(ctx context.Context) ([]Summary, error) {
	out, err := resilience.Run(ctx, d.exec, func(ctx context.Context) ([]Summary, error) {
		list, err := d.api.ContainerList(ctx, dockercontainer.ListOptions{All: true})
		if err != nil {
			return nil, err
		}
		out := make([]Summary, 0, len(list))
		for _, c := range list {
			name := ""
			if len(c.Names) > 0 {
				name = strings.TrimPrefix(c.Names[0], "/")
			}
			out = append(out, Summary{
				Name:    name,
				ShortID: shortID(c.ID),
				State:   c.State,
				Status:  c.Status,
				Image:   c.Image,
				Ports:   portStrings(c.Ports),
				Labels:  maps.Clone(c.Labels),
			})
		}
		return out, nil
	})
	if err != nil {
		if daemonUnreachable(err) {
			return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
		}
		return nil, fmt.Errorf("container: list: %w", err)
	}
	return out, nil
}

// Resources samples memory and CPU usage of the named container.
func (d *Docker) Resources(ctx context.Context, name string) (Resources, error) {
	now := d.now()
	obs := d.Inspect(ctx, name)

	switch obs.State {
	case status.ContainerDockerUnavailable:
		return Resources{}, fmt.Errorf("%w: %s", ErrRuntimeUnavailable, obs.Detail)
	case status.ContainerRunning:
	default:
		return Resources{Container: name, Status: obs.RawStatus, Error: obs.Detail, Timestamp: now}, nil
	}

	sample, err := resilience.Run(ctx, d.exec, func(ctx context.Context) (statsPayload, error) {
		resp, err := d.api.ContainerStats(ctx, name, false)
		if err != nil {
			return statsPayload{}, err
		}
		defer resp.Body.Close()
		var p statsPayload
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return statsPayload{}, fmt.Errorf("decode stats: %w", err)
		}
		return p, nil
	})
	if err != nil {
		if daemonUnreachable(err) {
			return Resources{}, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
		}
		return Resources{Container: name, Status: obs.RawStatus, Error: err.Error(), Timestamp: now}, nil
	}

	r := sample.resources()
	r.Container = name
	r.Status = obs.RawStatus
	r.Timestamp = now
	return r, nil
}

// Close releases the underlying HTTP transport.
func (d *Docker) Close() error {
	return d.api.Close()
}

func daemonUnreachable(err error) bool {
	return errors.Is(err, resilience.ErrCircuitOpen) ||
		errors.Is(err, resilience.ErrTimeout) ||
		client.IsErrConnectionFailed(err)
}

type cpuSample struct {
	CPUUsage struct {
		TotalUsage  uint64   `json:"total_usage"`
		PercpuUsage []uint64 `json:"percpu_usage"`
	} `json:"cpu_usage"`
	SystemUsage uint64 `json:"system_cpu_usage"`
	OnlineCPUs  uint32 `json:"online_cpus"`
}

// statsPayload is the subset of the daemon's stats document fleetwatch reads.
type statsPayload struct {
	MemoryStats struct {
		Usage uint64 `json:"usage"`
		Limit uint64 `json:"limit"`
	} `json:"memory_stats"`
	CPUStats    cpuSample `json:"cpu_stats"`
	PreCPUStats cpuSample `json:"precpu_stats"`
}

func (p statsPayload) resources() Resources {
	cpus := int(p.CPUStats.OnlineCPUs)
	if cpus == 0 {
		cpus = len(p.CPUStats.CPUUsage.PercpuUsage)
	}
	cpuDelta := float64(p.CPUStats.CPUUsage.TotalUsage) - float64(p.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(p.CPUStats.SystemUsage) - float64(p.PreCPUStats.SystemUsage)

	return Resources{
		MemoryUsage:   p.MemoryStats.Usage,
		MemoryLimit:   p.MemoryStats.Limit,
		MemoryPercent: MemoryPercent(p.MemoryStats.Usage, p.MemoryStats.Limit),
		CPUPercent:    CPUPercent(cpuDelta, sysDelta, cpus),
	}
}
