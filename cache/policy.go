package cache

import (
	"strings"
	"time"
)

// Well-known key namespaces.
const (
	NamespaceSystem    = "system"
	NamespaceDocker    = "docker"
	NamespaceHealth    = "health"
	NamespaceServices  = "services"
	NamespaceContainer = "container"
)

// Default TTLs.
const (
	DefaultTTL = 60 * time.Second
	DefaultMax = 1 * time.Hour
)

// Policy resolves TTLs for keys.
type Policy struct {
	// DefaultTTL applies to namespaces absent from Namespaces.
	DefaultTTL time.Duration

	// MaxTTL clamps every resolved TTL. If zero, no maximum is enforced.
	MaxTTL time.Duration

	// Namespaces maps a key namespace to its TTL.
	Namespaces map[string]time.Duration
}

// DefaultPolicy returns the fleet TTL table.
// system 10s, docker 15s, health 30s, services 15s, container 20s; others 60s.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: DefaultTTL,
		MaxTTL:     DefaultMax,
		Namespaces: map[string]time.Duration{
			NamespaceSystem:    10 * time.Second,
			NamespaceDocker:    15 * time.Second,
			NamespaceHealth:    30 * time.Second,
			NamespaceServices:  15 * time.Second,
			NamespaceContainer: 20 * time.Second,
		},
	}
}

// Namespace returns the key prefix before the first underscore.
// A key without an underscore is its own namespace.
func Namespace(key string) string {
	if i := strings.IndexByte(key, '_'); i >= 0 {
		return key[:i]
	}
	return key
}

// Key joins a namespace and an identifier: Key("health", "ollama") is
// "health_ollama".
func Key(namespace, id string) string {
	return namespace + "_" + id
}

// TTLFor returns the namespace TTL for key.
func (p Policy) TTLFor(key string) time.Duration {
	if ttl, ok := p.Namespaces[Namespace(key)]; ok && ttl > 0 {
		return p.clamp(ttl)
	}
	return p.clamp(p.DefaultTTL)
}

// EffectiveTTL returns override when positive, else the namespace TTL for
// key, clamped to MaxTTL.
func (p Policy) EffectiveTTL(key string, override time.Duration) time.Duration {
	if override > 0 {
		return p.clamp(override)
	}
	return p.TTLFor(key)
}

// Table returns a copy of the namespace table.
func (p Policy) Table() map[string]time.Duration {
	out := make(map[string]time.Duration, len(p.Namespaces))
	for ns, ttl := range p.Namespaces {
		out[ns] = ttl
	}
	return out
}

func (p Policy) clamp(ttl time.Duration) time.Duration {
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}

func (p Policy) withDefaults() Policy {
	if p.DefaultTTL <= 0 {
		p.DefaultTTL = DefaultTTL
	}
	p.Namespaces = p.Table()
	return p
}
