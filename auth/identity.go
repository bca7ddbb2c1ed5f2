package auth

import (
	"context"
	"slices"
	"time"
)

// AuthMethod names the credential that produced an Identity.
type AuthMethod string

const (
	AuthMethodAPIKey    AuthMethod = "api_key"
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is the caller behind an operator request. Principal is safe to
// log: a token subject or an API key id, never the credential itself.
type Identity struct {
	Principal string
	Roles     []string
	Method    AuthMethod
	Claims    map[string]any
	ExpiresAt time.Time // zero for API keys
}

// HasRole reports whether role was granted.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// IsAnonymous reports whether id stands for an unauthenticated caller.
func (id *Identity) IsAnonymous() bool {
	return id == nil || id.Principal == "" || id.Method == AuthMethodAnonymous
}

// AnonymousIdentity is attached to requests when the guard is disabled.
func AnonymousIdentity() *Identity {
	return &Identity{Principal: "anonymous", Method: AuthMethodAnonymous}
}

type identityKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the guard, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// PrincipalFromContext is the principal of IdentityFromContext, or "".
func PrincipalFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Principal
	}
	return ""
}
