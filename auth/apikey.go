package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// DefaultAPIKeyHeader carries operator API keys.
const DefaultAPIKeyHeader = "X-API-Key"

// KeyRing is the fixed set of operator API keys loaded from configuration.
// Keys are held only as SHA-256 digests. A KeyRing is immutable after
// NewKeyRing and safe for concurrent use.
type KeyRing struct {
	header string
	roles  []string
	keys   map[string][sha256.Size]byte // key id -> digest
}

// NewKeyRing hashes keys and grants each of them roles. Blank keys are
// skipped. An empty header means DefaultAPIKeyHeader.
func NewKeyRing(header string, keys []string, roles ...string) *KeyRing {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	ring := &KeyRing{
		header: header,
		roles:  roles,
		keys:   make(map[string][sha256.Size]byte, len(keys)),
	}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			sum := sha256.Sum256([]byte(k))
			ring.keys[KeyID(k)] = sum
		}
	}
	return ring
}

// KeyID is the loggable identifier of key: the first eight hex digits of
// its SHA-256 digest.
func KeyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}

// Len returns the number of distinct keys.
func (k *KeyRing) Len() int { return len(k.keys) }

// Name returns "api_key".
func (k *KeyRing) Name() string { return string(AuthMethodAPIKey) }

// Supports reports whether the request carries the key header.
func (k *KeyRing) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(k.header) != ""
}

// Authenticate matches the presented key against the ring.
func (k *KeyRing) Authenticate(_ context.Context, req *AuthRequest) (*AuthResult, error) {
	presented := strings.TrimSpace(req.GetHeader(k.header))
	if presented == "" {
		return AuthFailure(ErrMissingCredentials, k.Name()), nil
	}
	id := KeyID(presented)
	want, ok := k.keys[id]
	got := sha256.Sum256([]byte(presented))
	if !ok || subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return AuthFailure(ErrInvalidCredentials, k.Name()), nil
	}
	return AuthSuccess(&Identity{
		Principal: "api_key:" + id,
		Roles:     append([]string(nil), k.roles...),
		Method:    AuthMethodAPIKey,
		Claims:    map[string]any{"key_id": id},
	}), nil
}

var _ Authenticator = (*KeyRing)(nil)
