package auth

import (
	"context"
	"net/http"
)

// Authenticator turns request credentials into an Identity.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: a rejected credential is a result with Authenticated false
//   and a sentinel in Error; the error return is kept for failures of
//   the authenticator itself.
type Authenticator interface {
	Name() string
	Supports(ctx context.Context, req *AuthRequest) bool
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest is the part of an HTTP request authenticators look at.
type AuthRequest struct {
	Headers  http.Header
	Resource string // route pattern, for logging
}

// GetHeader returns the first value of key, or "".
func (r *AuthRequest) GetHeader(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}

// AuthResult is the outcome of one authentication attempt.
type AuthResult struct {
	Authenticated bool
	Identity      *Identity // set when Authenticated
	Error         error     // set otherwise
	Method        string
}

// AuthSuccess wraps an accepted identity.
func AuthSuccess(id *Identity) *AuthResult {
	return &AuthResult{Authenticated: true, Identity: id, Method: string(id.Method)}
}

// AuthFailure wraps a rejection reason.
func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{Error: err, Method: method}
}

// chain asks each authenticator that recognizes the request in turn. The
// first acceptance wins; otherwise the last rejection is reported, or
// ErrMissingCredentials when no authenticator recognized the request.
type chain []Authenticator

func (c chain) Name() string { return "chain" }

func (c chain) Supports(ctx context.Context, req *AuthRequest) bool {
	for _, a := range c {
		if a.Supports(ctx, req) {
			return true
		}
	}
	return false
}

func (c chain) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	result := AuthFailure(ErrMissingCredentials, "")
	for _, a := range c {
		if !a.Supports(ctx, req) {
			continue
		}
		r, err := a.Authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		if r.Authenticated {
			return r, nil
		}
		result = r
	}
	return result, nil
}

var _ Authenticator = chain(nil)
