package config

import (
	"time"

	"github.com/jonwraymond/fleetwatch/auth"
	"github.com/jonwraymond/fleetwatch/registry"
)

// Config is the complete fleetwatch configuration.
type Config struct {
	Server    ServerConfig       `koanf:"server"`
	Logging   LoggingConfig      `koanf:"logging"`
	Telemetry TelemetryConfig    `koanf:"telemetry"`
	Cache     CacheConfig        `koanf:"cache"`
	Probe     ProbeConfig        `koanf:"probe"`
	Docker    DockerConfig       `koanf:"docker"`
	Auth      auth.Config        `koanf:"auth"`
	Secrets   SecretsConfig      `koanf:"secrets"`
	Layers    []registry.Layer   `koanf:"layers"`
	Services  []registry.Service `koanf:"services"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address string `koanf:"address"`
	Port    int    `koanf:"port"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	ServiceName string        `koanf:"service_name"`
	Tracing     TracingConfig `koanf:"tracing"`
	Metrics     MetricsConfig `koanf:"metrics"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled   bool    `koanf:"enabled"`
	Exporter  string  `koanf:"exporter"`
	SamplePct float64 `koanf:"sample_pct"`

	// Endpoint is the OTLP collector URL. Empty falls back to the
	// OTEL_EXPORTER_OTLP_* environment variables.
	Endpoint string `koanf:"endpoint"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Exporter string `koanf:"exporter"`
	Endpoint string `koanf:"endpoint"`
}

// CacheConfig configures TTLs and the cleanup scheduler.
type CacheConfig struct {
	DefaultTTL      time.Duration `koanf:"default_ttl"`
	MaxTTL          time.Duration `koanf:"max_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// TTLs overrides the per-namespace TTL table.
	TTLs map[string]time.Duration `koanf:"ttls"`
}

// ProbeConfig configures service probes.
type ProbeConfig struct {
	HTTPTimeout    time.Duration `koanf:"http_timeout"`
	CommandTimeout time.Duration `koanf:"command_timeout"`
	MaxConcurrent  int           `koanf:"max_concurrent"`

	// CollapseNon2xx reports every non-2xx answer as unhealthy instead of
	// separating 502/503/504 from other codes.
	CollapseNon2xx bool `koanf:"collapse_non_2xx"`

	// ExecPrefix is prepended to command probes.
	ExecPrefix []string `koanf:"exec_prefix"`
}

// DockerConfig configures the container runtime client.
type DockerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	APIVersion      string        `koanf:"api_version"`
	Timeout         time.Duration `koanf:"timeout"`
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerReset    time.Duration `koanf:"breaker_reset"`

	// Discovery serves /api/discovery over containers named with
	// DiscoveryPrefix.
	Discovery       bool   `koanf:"discovery"`
	DiscoveryPrefix string `koanf:"discovery_prefix"`
}

// SecretsConfig configures secret providers by name ("env", "file").
type SecretsConfig struct {
	Strict    bool                      `koanf:"strict"`
	Providers map[string]map[string]any `koanf:"providers"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:           "0.0.0.0",
			Port:              5003,
			ShutdownTimeout:   10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			ServiceName: "fleetwatch",
			Tracing:     TracingConfig{Enabled: false, Exporter: "none", SamplePct: 1.0},
			Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		},
		Cache: CacheConfig{
			DefaultTTL:      60 * time.Second,
			MaxTTL:          time.Hour,
			CleanupInterval: 300 * time.Second,
		},
		Probe: ProbeConfig{
			HTTPTimeout:    5 * time.Second,
			CommandTimeout: 5 * time.Second,
			MaxConcurrent:  8,
		},
		Docker: DockerConfig{
			Enabled:         true,
			Timeout:         5 * time.Second,
			BreakerFailures: 3,
			BreakerReset:    30 * time.Second,
			Discovery:       true,
		},
		Auth: auth.Config{
			APIKeyHeader: auth.DefaultAPIKeyHeader,
			OperatorRole: auth.DefaultOperatorRole,
		},
	}
}
