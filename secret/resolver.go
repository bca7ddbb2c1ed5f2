package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches secretref:<provider>:<ref>; the ref runs to the next
// whitespace so references can sit inside a header value.
var refPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver turns configured strings into their secret values.
//
// Resolution happens in two passes: environment expansion (see ExpandEnv),
// then every secretref:<provider>:<ref> in the result is replaced with the
// provider's value. A nil *Resolver only expands the environment.
//
// Contract:
// - Concurrency: safe for concurrent use once providers are registered.
// - Errors: the first failing reference aborts resolution; values are never
//   partially returned.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. A strict resolver rejects empty provider
// values.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds provider, replacing any provider with the same name.
func (r *Resolver) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue expands the environment in value and replaces its secret
// references.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnv(value)
	if err != nil {
		return "", err
	}
	if r == nil || !strings.Contains(expanded, "secretref:") {
		return expanded, nil
	}

	var firstErr error
	out := refPattern.ReplaceAllStringFunc(expanded, func(match string) string {
		if firstErr != nil {
			return match
		}
		sub := refPattern.FindStringSubmatch(match)
		v, err := r.lookup(ctx, sub[1], sub[2])
		if err != nil {
			firstErr = err
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ResolveSlice resolves each value in values.
func (r *Resolver) ResolveSlice(ctx context.Context, values []string) ([]string, error) {
	resolved := make([]string, len(values))
	for i, v := range values {
		out, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		resolved[i] = out
	}
	return resolved, nil
}

// ParseSecretRef reports whether value is exactly one secret reference of
// the form secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	loc := refPattern.FindStringSubmatchIndex(value)
	if loc == nil || loc[0] != 0 || loc[1] != len(value) {
		return "", "", false
	}
	return value[loc[2]:loc[3]], value[loc[4]:loc[5]], true
}

func (r *Resolver) lookup(ctx context.Context, providerName, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, providerName)
	}
	v, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret: %s:%s: %w", providerName, ref, err)
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, providerName, ref)
	}
	return v, nil
}

// Close closes every registered provider and returns the first error.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var first error
	for _, p := range r.providers {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
