package cache

import (
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Entry is a single cached value.
//
// Values are replaced wholesale on refresh and never mutated in place, so an
// Entry returned by Peek may be read without holding any lock.
type Entry struct {
	Key       string
	Value     any
	CreatedAt time.Time
	TTL       time.Duration
}

// Age returns how long ago the entry was stored.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// ExpiresAt returns the instant the entry stops being served by Get.
func (e Entry) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.TTL)
}

// Fresh reports whether Get would return the entry at now.
func (e Entry) Fresh(now time.Time) bool {
	return e.Age(now) < e.TTL
}

// sweepable reports whether SweepExpired removes the entry at now.
func (e Entry) sweepable(now time.Time) bool {
	return e.Age(now) > e.TTL
}

// Store is a TTL key-value store with stale reads.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Blocking: no method may perform I/O or block on anything but the
//   internal lock.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
// - Expiry: Get performs no deletion. Expired entries remain visible to Peek
//   until swept, invalidated or refreshed.
type Store interface {
	// Get returns the value for key if an unexpired entry exists.
	Get(key string) (any, bool)

	// Set inserts or replaces the entry for key, stamped with the store
	// clock. A ttl <= 0 resolves through the namespace table.
	Set(key string, value any, ttl time.Duration) error

	// Peek returns the entry for key even if it has expired.
	Peek(key string) (Entry, bool)

	// SweepExpired removes every entry with now - CreatedAt > TTL and
	// returns the number removed.
	SweepExpired(now time.Time) int

	// Clear removes every entry and returns the number removed.
	Clear() int

	// Invalidate removes the entry for key and reports whether one existed.
	Invalidate(key string) bool

	// InvalidateNamespace removes every entry whose key is in namespace and
	// returns the number removed.
	InvalidateNamespace(namespace string) int

	// Stats returns a point-in-time snapshot of the store.
	Stats(now time.Time) Stats

	// Now returns the store clock's current time.
	Now() time.Time
}

// Stats is a snapshot of a Store for introspection endpoints.
type Stats struct {
	Size       int                      `json:"size"`
	Entries    []EntryStats             `json:"entries"`
	TTLTable   map[string]time.Duration `json:"ttl_table"`
	DefaultTTL time.Duration            `json:"default_ttl"`
}

// EntryStats describes one entry in a Stats snapshot.
type EntryStats struct {
	Key       string        `json:"key"`
	Namespace string        `json:"namespace"`
	Age       time.Duration `json:"age"`
	TTL       time.Duration `json:"ttl"`
	ExpiresIn time.Duration `json:"expires_in"`
	Expired   bool          `json:"expired"`
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
