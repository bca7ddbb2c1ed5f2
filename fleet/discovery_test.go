package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/fleetwatch/container"
	"github.com/jonwraymond/fleetwatch/registry"
	"github.com/jonwraymond/fleetwatch/status"
)

func TestDiscoveredName(t *testing.T) {
	tests := []struct {
		container, prefix, want string
	}{
		{"hub-ollama-1", "hub-", "ollama"},
		{"hub-open-webui-12", "hub-", "open-webui"},
		{"hub-redis", "hub-", "redis"},
		{"hub-pgvector-v2", "hub-", "pgvector-v2"},
		{"ollama-1", "", "ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.container, func(t *testing.T) {
			assert.Equal(t, tt.want, discoveredName(tt.container, tt.prefix))
		})
	}
}

func TestMonitor_Discover(t *testing.T) {
	f := newFixture(t, []registry.Service{
		{ID: "ollama", ContainerName: "hub-ollama-1", Category: "ai"},
		{ID: "redis", ContainerName: "hub-redis-1", Category: "database"},
	}, Config{DiscoveryPrefix: "hub-"})
	f.runtime.SetRunning("hub-ollama-1", status.NativeNone)
	f.runtime.SetListing("hub-ollama-1", container.Summary{
		Image:  "ollama/ollama",
		Ports:  []string{"11434->11434/tcp"},
		Labels: map[string]string{"com.docker.compose.service": "ollama"},
	})
	f.runtime.SetRunning("hub-tika-1", status.NativeNone)
	f.runtime.SetRunning("other-proxy-1", status.NativeNone)

	d := f.monitor.Discover(context.Background())
	assert.Empty(t, d.Error)
	assert.Equal(t, []string{"ollama", "redis"}, d.Configured)
	assert.Equal(t, []string{"tika"}, d.Unregistered)
	assert.Equal(t, f.clock.Now(), d.Timestamp)

	require.Len(t, d.Discovered, 2)
	assert.Equal(t, DiscoveredContainer{
		ContainerName: "hub-ollama-1",
		Status:        "running",
		Image:         "ollama/ollama",
		Ports:         []string{"11434->11434/tcp"},
		Labels:        map[string]string{"com.docker.compose.service": "ollama"},
		ServiceID:     "ollama",
	}, d.Discovered["ollama"])
	assert.Empty(t, d.Discovered["tika"].ServiceID)
	assert.NotContains(t, d.Discovered, "redis")
}

func TestMonitor_DiscoverRuntimeDown(t *testing.T) {
	f := newFixture(t, []registry.Service{
		{ID: "ollama", ContainerName: "hub-ollama-1", Category: "ai"},
	}, Config{})
	f.runtime.SetDown(true)

	d := f.monitor.Discover(context.Background())
	assert.Contains(t, d.Error, container.ErrRuntimeUnavailable.Error())
	assert.Equal(t, []string{"ollama"}, d.Configured)
	assert.Empty(t, d.Discovered)
}
