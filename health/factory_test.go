package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/fleetwatch/registry"
)

func TestNewProber_Dispatch(t *testing.T) {
	tests := []struct {
		name string
		svc  registry.Service
		want any
	}{
		{
			name: "http inferred from url",
			svc:  registry.Service{ID: "ollama", ContainerName: "c", HealthURL: "http://localhost:11435/api/version"},
			want: &HTTPProber{},
		},
		{
			name: "command inferred",
			svc:  registry.Service{ID: "db", ContainerName: "hub-db-1", Command: []string{"pg_isready"}},
			want: &CommandProber{},
		},
		{
			name: "container only",
			svc:  registry.Service{ID: "watchtower", ContainerName: "c"},
			want: ContainerOnlyProber{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProber(tt.svc, Options{})
			if err != nil {
				t.Fatalf("NewProber() error = %v", err)
			}
			switch tt.want.(type) {
			case *HTTPProber:
				if _, ok := p.(*HTTPProber); !ok {
					t.Fatalf("got %T, want *HTTPProber", p)
				}
			case *CommandProber:
				if _, ok := p.(*CommandProber); !ok {
					t.Fatalf("got %T, want *CommandProber", p)
				}
			case ContainerOnlyProber:
				if _, ok := p.(ContainerOnlyProber); !ok {
					t.Fatalf("got %T, want ContainerOnlyProber", p)
				}
			}
		})
	}
}

func TestNewProber_AppliesOptions(t *testing.T) {
	p, err := NewProber(registry.Service{
		ID:            "litellm",
		ContainerName: "c",
		HealthURL:     "http://localhost:4000/v1/models",
		HealthMethod:  "get",
		AuthHeader:    "Bearer k",
	}, Options{HTTPTimeout: 2 * time.Second, Collapse: true})
	if err != nil {
		t.Fatal(err)
	}
	hp := p.(*HTTPProber)
	if hp.config.Method != "GET" || hp.config.Timeout != 2*time.Second || !hp.config.Collapse || hp.config.AuthHeader != "Bearer k" {
		t.Fatalf("config = %+v", hp.config)
	}
}

func TestNewProber_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		svc   registry.Service
		field string
	}{
		{"http without url", registry.Service{ID: "a", ProbeKind: registry.ProbeHTTP}, "health_url"},
		{"relative url", registry.Service{ID: "a", HealthURL: "/health"}, "health_url"},
		{"bad method", registry.Service{ID: "a", HealthURL: "http://x", HealthMethod: "POST"}, "health_method"},
		{"command without command", registry.Service{ID: "a", ContainerName: "c", ProbeKind: registry.ProbeCommand}, "command"},
		{"command without container", registry.Service{ID: "a", Command: []string{"x"}}, "container_name"},
		{"unknown kind", registry.Service{ID: "a", ProbeKind: "grpc"}, "probe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProber(tt.svc, Options{})
			var cfgErr *ProbeConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want *ProbeConfigError", err)
			}
			if cfgErr.Field != tt.field || cfgErr.ServiceID != "a" {
				t.Errorf("ProbeConfigError = %+v, want field %q", cfgErr, tt.field)
			}
			if !errors.Is(err, ErrProbeConfig) {
				t.Errorf("errors.Is(err, ErrProbeConfig) = false")
			}
		})
	}
}

func TestContainerOnlyProber(t *testing.T) {
	r := ContainerOnlyProber{}.Probe(context.Background())
	if r.Outcome != OutcomeUnknown || r.Err != nil {
		t.Fatalf("Probe() = %+v, want unknown", r)
	}
}
