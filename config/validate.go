package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonwraymond/fleetwatch/cache"
	"github.com/jonwraymond/fleetwatch/container"
	"github.com/jonwraymond/fleetwatch/health"
	"github.com/jonwraymond/fleetwatch/observe"
	"github.com/jonwraymond/fleetwatch/registry"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate rejects configurations the process cannot run with.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return invalid("server.shutdown_timeout must not be negative")
	}
	if !slices.Contains(observe.ValidLogLevels, c.Logging.Level) {
		return invalid("logging.level %q", c.Logging.Level)
	}
	oc := c.Observe()
	if err := oc.Validate(); err != nil {
		return fmt.Errorf("%w: telemetry: %w", ErrInvalidConfig, err)
	}

	if c.Cache.DefaultTTL <= 0 {
		return invalid("cache.default_ttl must be positive")
	}
	if c.Cache.MaxTTL < 0 {
		return invalid("cache.max_ttl must not be negative")
	}
	if c.Cache.CleanupInterval <= 0 {
		return invalid("cache.cleanup_interval must be positive")
	}
	for ns, ttl := range c.Cache.TTLs {
		if ttl <= 0 {
			return invalid("cache.ttls.%s must be positive", ns)
		}
	}

	if c.Probe.HTTPTimeout <= 0 || c.Probe.CommandTimeout <= 0 {
		return invalid("probe timeouts must be positive")
	}
	if c.Probe.MaxConcurrent <= 0 {
		return invalid("probe.max_concurrent must be positive")
	}

	if c.Docker.Enabled {
		if c.Docker.Timeout <= 0 {
			return invalid("docker.timeout must be positive")
		}
		if c.Docker.BreakerFailures < 0 || c.Docker.BreakerReset < 0 {
			return invalid("docker breaker settings must not be negative")
		}
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := registry.ValidateLayers(c.Layers); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := registry.New(c.Services); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// Observe converts the telemetry and logging sections into an observer
// configuration.
func (c Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.Telemetry.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.Tracing.Enabled,
			Exporter:  c.Telemetry.Tracing.Exporter,
			SamplePct: c.Telemetry.Tracing.SamplePct,
			Endpoint:  c.Telemetry.Tracing.Endpoint,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.Metrics.Enabled,
			Exporter: c.Telemetry.Metrics.Exporter,
			Endpoint: c.Telemetry.Metrics.Endpoint,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Logging.Level,
		},
	}
}

// Policy returns the cache TTL policy: the built-in namespace table with
// TTLs applied on top.
func (c CacheConfig) Policy() cache.Policy {
	p := cache.DefaultPolicy()
	p.DefaultTTL = c.DefaultTTL
	p.MaxTTL = c.MaxTTL
	for ns, ttl := range c.TTLs {
		p.Namespaces[ns] = ttl
	}
	return p
}

// Options returns the prober options for the probe section.
func (c ProbeConfig) Options() health.Options {
	return health.Options{
		HTTPTimeout:    c.HTTPTimeout,
		CommandTimeout: c.CommandTimeout,
		Collapse:       c.CollapseNon2xx,
		ExecPrefix:     c.ExecPrefix,
	}
}

// ProbeWait is how long a probe waits for a concurrency slot.
func (c ProbeConfig) ProbeWait() time.Duration {
	return c.HTTPTimeout
}

// Client returns the container runtime client for the docker section.
// A disabled section yields container.Unavailable.
func (c DockerConfig) Client(logger observe.Logger) (container.Client, error) {
	if !c.Enabled {
		return container.Unavailable{Reason: "docker disabled by configuration"}, nil
	}
	d, err := container.NewDocker(container.DockerConfig{
		Host:            c.Host,
		APIVersion:      c.APIVersion,
		Timeout:         c.Timeout,
		BreakerFailures: c.BreakerFailures,
		BreakerReset:    c.BreakerReset,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
