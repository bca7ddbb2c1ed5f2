package container

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonwraymond/fleetwatch/status"
)

// Static is an in-memory Client whose containers are set by hand. It backs
// tests and offline demos.
type Static struct {
	mu        sync.Mutex
	obs       map[string]Observation
	resources map[string]Resources
	listed    map[string]Summary
	calls     map[string]int
	down      bool
}

var _ Client = (*Static)(nil)

// NewStatic creates an empty static runtime.
func NewStatic() *Static {
	return &Static{
		obs:       make(map[string]Observation),
		resources: make(map[string]Resources),
		listed:    make(map[string]Summary),
		calls:     make(map[string]int),
	}
}

// Set records the observation returned for name.
func (s *Static) Set(name string, obs Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs[name] = obs
}

// SetRunning marks name as running with the given native health.
func (s *Static) SetRunning(name string, native status.NativeHealth) {
	s.Set(name, Observation{State: status.ContainerRunning, Native: native, RawStatus: "running"})
}

// SetResources records the resource sample returned for name.
func (s *Static) SetResources(name string, r Resources) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[name] = r
}

// SetListing records the image, ports and labels List reports for name.
func (s *Static) SetListing(name string, sum Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed[name] = sum
}

// Remove forgets name so it reports as not found.
func (s *Static) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.obs, name)
	delete(s.resources, name)
	delete(s.listed, name)
}

// SetDown simulates an unreachable daemon.
func (s *Static) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// Calls returns how many times name was inspected.
func (s *Static) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// Inspect returns the recorded observation, or NotFound.
func (s *Static) Inspect(_ context.Context, name string) Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	if s.down {
		return Observation{State: status.ContainerDockerUnavailable, RawStatus: "docker_unavailable", Detail: "runtime down"}
	}
	obs, ok := s.obs[name]
	if !ok {
		return Observation{State: status.ContainerNotFound, RawStatus: "not_found", Detail: "container not found"}
	}
	return obs
}

// List returns the recorded containers sorted by name.
func (s *Static) List(context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, ErrRuntimeUnavailable
	}
	out := make([]Summary, 0, len(s.obs))
	for name, obs := range s.obs {
		sum := s.listed[name]
		sum.Name, sum.ShortID, sum.State = name, shortID(name), obs.RawStatus
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Resources returns the recorded sample, or zeroes with the container status.
func (s *Static) Resources(_ context.Context, name string) (Resources, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return Resources{}, ErrRuntimeUnavailable
	}
	obs, ok := s.obs[name]
	if !ok {
		return Resources{Container: name, Status: "not_found", Error: "container not found", Timestamp: time.Now()}, nil
	}
	r, ok := s.resources[name]
	if !ok || obs.State != status.ContainerRunning {
		return Resources{Container: name, Status: obs.RawStatus, Timestamp: time.Now()}, nil
	}
	r.Container = name
	r.Status = obs.RawStatus
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	return r, nil
}

// Close is a no-op.
func (s *Static) Close() error { return nil }
