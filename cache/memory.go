package cache

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store guarded by a single mutex.
// The lock covers map access only and is never held while producing a value.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	policy  Policy
	now     func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock replaces the store clock.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an in-memory store with the given policy.
// A zero DefaultTTL is replaced with DefaultTTL.
func NewMemoryStore(policy Policy, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]Entry),
		policy:  policy.withDefaults(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the store's TTL policy.
func (s *MemoryStore) Policy() Policy {
	return s.policy
}

func (s *MemoryStore) Now() time.Time {
	return s.now()
}

func (s *MemoryStore) Get(key string) (any, bool) {
	now := s.now()

	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()

	if !ok || !e.Fresh(now) {
		return nil, false
	}
	return e.Value, true
}

func (s *MemoryStore) Set(key string, value any, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	e := Entry{
		Key:       key,
		Value:     value,
		CreatedAt: s.now(),
		TTL:       s.policy.EffectiveTTL(key, ttl),
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Peek(key string) (Entry, bool) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	return e, ok
}

func (s *MemoryStore) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if e.sweepable(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	s.entries = make(map[string]Entry)
	return n
}

func (s *MemoryStore) Invalidate(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

func (s *MemoryStore) InvalidateNamespace(namespace string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if Namespace(key) == namespace {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Stats(now time.Time) Stats {
	s.mu.Lock()
	snapshot := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Key < snapshot[j].Key })

	entries := make([]EntryStats, 0, len(snapshot))
	for _, e := range snapshot {
		expiresIn := e.ExpiresAt().Sub(now)
		if expiresIn < 0 {
			expiresIn = 0
		}
		entries = append(entries, EntryStats{
			Key:       e.Key,
			Namespace: Namespace(e.Key),
			Age:       e.Age(now),
			TTL:       e.TTL,
			ExpiresIn: expiresIn,
			Expired:   !e.Fresh(now),
		})
	}

	return Stats{
		Size:       len(entries),
		Entries:    entries,
		TTLTable:   s.policy.Table(),
		DefaultTTL: s.policy.DefaultTTL,
	}
}

var _ Store = (*MemoryStore)(nil)
