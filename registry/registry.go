package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonwraymond/fleetwatch/secret"
)

// Registry is an ordered, immutable set of services.
//
// Contract:
// - Concurrency: safe for concurrent use; nothing mutates after New returns.
// - Ownership: returned slices are copies.
type Registry struct {
	order []string
	byID  map[string]Service
}

// New validates and normalizes services and builds a registry that keeps
// their order. Auth headers are used as given.
func New(services []Service) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(services)),
		byID:  make(map[string]Service, len(services)),
	}
	for i, raw := range services {
		svc, err := normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("services[%d]: %w", i, err)
		}
		if _, dup := r.byID[svc.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateService, svc.ID)
		}
		r.byID[svc.ID] = svc
		r.order = append(r.order, svc.ID)
	}
	return r, nil
}

// Load resolves every AuthHeader through resolver, then calls New.
// A nil resolver still expands ${ENV} references.
func Load(ctx context.Context, services []Service, resolver *secret.Resolver) (*Registry, error) {
	resolved := make([]Service, len(services))
	for i, svc := range services {
		if svc.AuthHeader != "" {
			h, err := resolver.ResolveValue(ctx, svc.AuthHeader)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: auth_header: %v", ErrInvalidService, svc.ID, err)
			}
			svc.AuthHeader = h
		}
		resolved[i] = svc
	}
	return New(resolved)
}

// Get returns the service with id.
func (r *Registry) Get(id string) (Service, error) {
	svc, ok := r.byID[id]
	if !ok {
		return Service{}, fmt.Errorf("%w: %q", ErrServiceNotFound, id)
	}
	return svc, nil
}

// All returns every service in registration order.
func (r *Registry) All() []Service {
	out := make([]Service, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs returns service ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of services.
func (r *Registry) Len() int {
	return len(r.order)
}

// Categories returns the distinct categories, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]struct{})
	for _, svc := range r.byID {
		seen[svc.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the services in category, in registration order.
func (r *Registry) ByCategory(category string) []Service {
	var out []Service
	for _, id := range r.order {
		if svc := r.byID[id]; svc.Category == category {
			out = append(out, svc)
		}
	}
	return out
}

// ByLayer returns the services in layer, in registration order.
func (r *Registry) ByLayer(layer string) []Service {
	var out []Service
	for _, id := range r.order {
		if svc := r.byID[id]; svc.Layer == layer {
			out = append(out, svc)
		}
	}
	return out
}
