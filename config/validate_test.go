package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fleetwatch/container"
	"github.com/jonwraymond/fleetwatch/observe"
)

func TestDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestCacheConfig_Policy(t *testing.T) {
	cfg := DefaultConfig().Cache
	cfg.DefaultTTL = 90 * time.Second
	cfg.TTLs = map[string]time.Duration{
		"health": 45 * time.Second,
		"custom": 5 * time.Second,
	}

	p := cfg.Policy()
	require.Equal(t, 90*time.Second, p.DefaultTTL)
	require.Equal(t, time.Hour, p.MaxTTL)
	require.Equal(t, 45*time.Second, p.TTLFor("health_db"))
	require.Equal(t, 5*time.Second, p.TTLFor("custom_thing"))
	require.Equal(t, 10*time.Second, p.TTLFor("system_metrics"))
	require.Equal(t, 90*time.Second, p.TTLFor("unknown_key"))
}

func TestProbeConfig_Options(t *testing.T) {
	cfg := ProbeConfig{
		HTTPTimeout:    3 * time.Second,
		CommandTimeout: 4 * time.Second,
		CollapseNon2xx: true,
		ExecPrefix:     []string{"docker", "exec"},
	}
	opts := cfg.Options()
	require.Equal(t, 3*time.Second, opts.HTTPTimeout)
	require.Equal(t, 4*time.Second, opts.CommandTimeout)
	require.True(t, opts.Collapse)
	require.Equal(t, []string{"docker", "exec"}, opts.ExecPrefix)
	require.Equal(t, 3*time.Second, cfg.ProbeWait())
}

func TestConfig_Observe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	oc := cfg.Observe()
	require.Equal(t, "fleetwatch", oc.ServiceName)
	require.True(t, oc.Logging.Enabled)
	require.Equal(t, "debug", oc.Logging.Level)
	require.True(t, oc.Metrics.Enabled)
	require.Equal(t, "prometheus", oc.Metrics.Exporter)
	require.False(t, oc.Tracing.Enabled)
	require.NoError(t, oc.Validate())
}

func TestDockerConfig_ClientDisabled(t *testing.T) {
	c, err := DockerConfig{Enabled: false}.Client(observe.NopLogger())
	require.NoError(t, err)
	require.IsType(t, container.Unavailable{}, c)
}
