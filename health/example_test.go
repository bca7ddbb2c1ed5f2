package health_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/jonwraymond/fleetwatch/health"
	"github.com/jonwraymond/fleetwatch/registry"
)

func ExampleNewHTTPProber() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := health.NewHTTPProber(health.HTTPConfig{URL: srv.URL})
	r := p.Probe(context.Background())

	fmt.Println("Outcome:", r.Outcome)
	fmt.Println("Detail:", r.Detail)
	// Output:
	// Outcome: unhealthy
	// Detail: HTTP 503
}

func ExampleNewProber() {
	svc := registry.Service{ID: "watchtower", ContainerName: "hub-watchtower-1"}

	p, err := health.NewProber(svc, health.Options{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(p.Probe(context.Background()).Outcome)
	// Output:
	// unknown
}

func ExampleProbeConfigError() {
	_, err := health.NewProber(registry.Service{ID: "litellm", HealthURL: "/v1/models"}, health.Options{})
	fmt.Println(err)
	// Output:
	// health: service "litellm": health_url: must be an absolute http or https URL
}
