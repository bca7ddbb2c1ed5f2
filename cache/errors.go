package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors for cache operations.
var (
	ErrNilCache       = errors.New("cache: store is nil")
	ErrInvalidKey     = errors.New("cache: key is invalid")
	ErrKeyTooLong     = errors.New("cache: key exceeds max length")
	ErrJanitorRunning = errors.New("cache: janitor already running")
)

// FetchError reports a producer failure for a key that had no previous value
// to fall back on.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cache: fetch %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func errTypeMismatch(got, want any) error {
	return fmt.Errorf("cache: cached value is %T, want %T", got, want)
}
