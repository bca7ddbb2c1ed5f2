package cache

import (
	"testing"
	"time"
)

func TestNamespace(t *testing.T) {
	tests := []struct {
		key, want string
	}{
		{"health_ollama", "health"},
		{"health_open_webui", "health"},
		{"services_all", "services"},
		{"system", "system"},
		{"_leading", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Namespace(tt.key); got != tt.want {
			t.Errorf("Namespace(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	if got, want := Key(NamespaceHealth, "litellm"), "health_litellm"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
	if got := Namespace(Key(NamespaceContainer, "open_webui")); got != NamespaceContainer {
		t.Errorf("Namespace(Key()) = %q", got)
	}
}

func TestPolicy_TTLMatrix(t *testing.T) {
	p := Policy{
		DefaultTTL: time.Minute,
		MaxTTL:     10 * time.Minute,
		Namespaces: map[string]time.Duration{
			"health": 30 * time.Second,
			"huge":   time.Hour,
			"zero":   0,
		},
	}

	tests := []struct {
		name     string
		key      string
		override time.Duration
		want     time.Duration
	}{
		{"namespace hit", "health_a", 0, 30 * time.Second},
		{"unknown namespace uses default", "other_a", 0, time.Minute},
		{"namespace above max is clamped", "huge_a", 0, 10 * time.Minute},
		{"zero namespace entry falls back to default", "zero_a", 0, time.Minute},
		{"override wins", "health_a", 5 * time.Second, 5 * time.Second},
		{"negative override ignored", "health_a", -time.Second, 30 * time.Second},
		{"override clamped", "health_a", 2 * time.Hour, 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EffectiveTTL(tt.key, tt.override); got != tt.want {
				t.Errorf("EffectiveTTL(%q, %v) = %v, want %v", tt.key, tt.override, got, tt.want)
			}
		})
	}
}

func TestPolicy_NoMaxMeansNoClamp(t *testing.T) {
	p := Policy{DefaultTTL: time.Minute}
	if got := p.EffectiveTTL("x", 48*time.Hour); got != 48*time.Hour {
		t.Errorf("EffectiveTTL = %v, want 48h", got)
	}
}

func TestPolicy_DefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.DefaultTTL != 60*time.Second {
		t.Errorf("DefaultTTL = %v, want 60s", p.DefaultTTL)
	}
	if p.MaxTTL != time.Hour {
		t.Errorf("MaxTTL = %v, want 1h", p.MaxTTL)
	}
	want := map[string]time.Duration{
		"system":    10 * time.Second,
		"docker":    15 * time.Second,
		"health":    30 * time.Second,
		"services":  15 * time.Second,
		"container": 20 * time.Second,
	}
	for ns, ttl := range want {
		if got := p.Namespaces[ns]; got != ttl {
			t.Errorf("Namespaces[%q] = %v, want %v", ns, got, ttl)
		}
	}
}

func TestPolicy_WithDefaultsFillsZeroDefault(t *testing.T) {
	p := Policy{}.withDefaults()
	if p.DefaultTTL != DefaultTTL {
		t.Errorf("DefaultTTL = %v, want %v", p.DefaultTTL, DefaultTTL)
	}
	if p.Namespaces == nil {
		t.Error("Namespaces is nil")
	}
}
