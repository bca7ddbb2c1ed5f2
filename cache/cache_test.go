package cache

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TestCacheKey_Validation tests key validation rules.
func TestCacheKey_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", ErrInvalidKey},
		{"valid key", "health_ollama", nil},
		{"too long", strings.Repeat("x", MaxKeyLength+1), ErrKeyTooLong},
		{"contains newline", "key\nwith\nnewlines", ErrInvalidKey},
		{"contains carriage return", "key\rwith\rreturns", ErrInvalidKey},
		{"whitespace only", "   ", ErrInvalidKey},
		{"max length exactly", strings.Repeat("x", MaxKeyLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateKey(%q) = %v, want nil", tt.key, err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestEntry_FreshAndSweepableBoundaries(t *testing.T) {
	t0 := newFakeClock().Now()
	e := Entry{Key: "health_x", CreatedAt: t0, TTL: 10 * time.Second}

	tests := []struct {
		elapsed       time.Duration
		wantFresh     bool
		wantSweepable bool
	}{
		{0, true, false},
		{9 * time.Second, true, false},
		{10 * time.Second, false, false},
		{10*time.Second + time.Nanosecond, false, true},
		{time.Hour, false, true},
	}
	for _, tt := range tests {
		now := t0.Add(tt.elapsed)
		if got := e.Fresh(now); got != tt.wantFresh {
			t.Errorf("Fresh(+%v) = %v, want %v", tt.elapsed, got, tt.wantFresh)
		}
		if got := e.sweepable(now); got != tt.wantSweepable {
			t.Errorf("sweepable(+%v) = %v, want %v", tt.elapsed, got, tt.wantSweepable)
		}
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&FetchError{Key: "health_n8n", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is(FetchError, cause) = false, want true")
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Key != "health_n8n" {
		t.Errorf("errors.As = %v, key %q", fe, fe.Key)
	}
	if !strings.Contains(err.Error(), "health_n8n") {
		t.Errorf("Error() = %q, want key in message", err.Error())
	}
}

func TestSentinelErrors(t *testing.T) {
	for _, err := range []error{ErrNilCache, ErrInvalidKey, ErrKeyTooLong, ErrJanitorRunning} {
		if !strings.HasPrefix(err.Error(), "cache: ") {
			t.Errorf("%q lacks package prefix", err.Error())
		}
	}
}
