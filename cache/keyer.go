package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// AllView is the suffix of the key for an unfiltered view.
const AllView = "all"

// Keyer derives cache keys for filtered views of a namespace.
//
// Contract:
// - Determinism: equal filter sets produce the same key in any map order.
// - Concurrency: implementations must be safe for concurrent use.
// - Namespacing: Namespace(key) returns the namespace passed in.
type Keyer interface {
	Key(namespace string, filters map[string]string) (string, error)
}

// DefaultKeyer hashes the filter set into a short hex suffix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns <namespace>_all when no filter has a value, and otherwise
// <namespace>_<16 hex chars of SHA-256 over the sorted filters>.
// Filters with empty values are ignored.
func (k *DefaultKeyer) Key(namespace string, filters map[string]string) (string, error) {
	if namespace == "" || strings.Contains(namespace, "_") {
		return "", fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}

	q := make(url.Values, len(filters))
	for name, v := range filters {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(name, v)
		}
	}
	if len(q) == 0 {
		return Key(namespace, AllView), nil
	}

	// Encode sorts by filter name.
	sum := sha256.Sum256([]byte(q.Encode()))
	return Key(namespace, hex.EncodeToString(sum[:8])), nil
}

var _ Keyer = (*DefaultKeyer)(nil)
