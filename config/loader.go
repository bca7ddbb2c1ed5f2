package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jonwraymond/fleetwatch/secret"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "FLEETWATCH"

// listKeys are split on commas when set from the environment.
var listKeys = map[string]bool{
	"auth.api_keys":     true,
	"probe.exec_prefix": true,
}

// Loader hydrates the runtime configuration with env > file > default
// precedence.
type Loader struct {
	envPrefix string
	files     []string
}

// NewLoader prepares a loader. An empty envPrefix disables environment
// overrides.
func NewLoader(envPrefix string, files ...string) *Loader {
	return &Loader{
		envPrefix: envPrefix,
		files:     files,
	}
}

// Load merges defaults, files and environment, resolves secrets and
// validates the result.
func (l *Loader) Load(ctx context.Context) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(DefaultConfig()), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	for _, path := range l.files {
		if path == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return Config{}, ctx.Err()
		default:
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s not found", path)
			}
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if l.envPrefix != "" {
		prefix := l.envPrefix + "_"
		transform := func(key, value string) (string, any) {
			// FLEETWATCH_SERVER__SHUTDOWN_TIMEOUT -> server.shutdown_timeout
			key = strings.TrimPrefix(key, prefix)
			key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
			if listKeys[key] {
				return key, splitList(value)
			}
			return key, value
		}
		if err := k.Load(env.ProviderWithValue(prefix, ".", transform), nil); err != nil {
			return Config{}, fmt.Errorf("config: load env: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.resolveSecrets(ctx); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SecretResolver builds the resolver described by the secrets section.
// Service auth headers are resolved through it when the registry loads.
func (c Config) SecretResolver() (*secret.Resolver, error) {
	builtin := secret.Builtin()
	r := secret.NewResolver(c.Secrets.Strict)
	for name, opts := range c.Secrets.Providers {
		p, err := builtin.Create(name, opts)
		if err != nil {
			return nil, fmt.Errorf("config: secrets.providers.%s: %w", name, err)
		}
		r.Register(p)
	}
	return r, nil
}

func (c *Config) resolveSecrets(ctx context.Context) error {
	r, err := c.SecretResolver()
	if err != nil {
		return err
	}
	keys, err := r.ResolveSlice(ctx, c.Auth.APIKeys)
	if err != nil {
		return fmt.Errorf("config: auth.api_keys: %w", err)
	}
	c.Auth.APIKeys = keys

	if c.Auth.JWTSecret != "" {
		s, err := r.ResolveValue(ctx, c.Auth.JWTSecret)
		if err != nil {
			return fmt.Errorf("config: auth.jwt_secret: %w", err)
		}
		c.Auth.JWTSecret = s
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// structToMap converts DefaultConfig into a map for the koanf confmap provider.
func structToMap(cfg Config) map[string]any {
	return map[string]any{
		"server": map[string]any{
			"address":             cfg.Server.Address,
			"port":                cfg.Server.Port,
			"shutdown_timeout":    cfg.Server.ShutdownTimeout,
			"read_header_timeout": cfg.Server.ReadHeaderTimeout,
		},
		"logging": map[string]any{
			"level": cfg.Logging.Level,
		},
		"telemetry": map[string]any{
			"service_name": cfg.Telemetry.ServiceName,
			"tracing": map[string]any{
				"enabled":    cfg.Telemetry.Tracing.Enabled,
				"exporter":   cfg.Telemetry.Tracing.Exporter,
				"sample_pct": cfg.Telemetry.Tracing.SamplePct,
				"endpoint":   cfg.Telemetry.Tracing.Endpoint,
			},
			"metrics": map[string]any{
				"enabled":  cfg.Telemetry.Metrics.Enabled,
				"exporter": cfg.Telemetry.Metrics.Exporter,
				"endpoint": cfg.Telemetry.Metrics.Endpoint,
			},
		},
		"cache": map[string]any{
			"default_ttl":      cfg.Cache.DefaultTTL,
			"max_ttl":          cfg.Cache.MaxTTL,
			"cleanup_interval": cfg.Cache.CleanupInterval,
		},
		"probe": map[string]any{
			"http_timeout":     cfg.Probe.HTTPTimeout,
			"command_timeout":  cfg.Probe.CommandTimeout,
			"max_concurrent":   cfg.Probe.MaxConcurrent,
			"collapse_non_2xx": cfg.Probe.CollapseNon2xx,
		},
		"docker": map[string]any{
			"enabled":          cfg.Docker.Enabled,
			"host":             cfg.Docker.Host,
			"api_version":      cfg.Docker.APIVersion,
			"timeout":          cfg.Docker.Timeout,
			"breaker_failures": cfg.Docker.BreakerFailures,
			"breaker_reset":    cfg.Docker.BreakerReset,
			"discovery":        cfg.Docker.Discovery,
			"discovery_prefix": cfg.Docker.DiscoveryPrefix,
		},
		"auth": map[string]any{
			"api_key_header": cfg.Auth.APIKeyHeader,
			"operator_role":  cfg.Auth.OperatorRole,
		},
	}
}
