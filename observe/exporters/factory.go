// Package exporters builds the OpenTelemetry span exporters and metric
// readers selected by name in the telemetry configuration.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrNoEndpoint is returned when an OTLP exporter has neither an explicit
// endpoint nor one of the OTEL_EXPORTER_OTLP_* variables.
var ErrNoEndpoint = errors.New("exporters: otlp endpoint not configured")

// Options tunes exporter construction.
type Options struct {
	// Endpoint is the collector URL for otlp exporters.
	Endpoint string

	// Registerer receives the collector for the prometheus reader.
	// Nil means prometheus.DefaultRegisterer.
	Registerer promclient.Registerer

	// Writer receives stdout exporter output. Nil means os.Stdout.
	Writer io.Writer
}

func (o Options) writer() io.Writer {
	if o.Writer == nil {
		return os.Stdout
	}
	return o.Writer
}

// endpoint reports whether an OTLP endpoint is available. The grpc
// exporters read the environment themselves when none is given.
func (o Options) endpoint(signalEnv string) (string, bool) {
	if o.Endpoint != "" {
		return o.Endpoint, true
	}
	return "", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" || os.Getenv(signalEnv) != ""
}

// NewSpanExporter returns the span exporter called name: stdout, otlp,
// jaeger (OTLP ingest) or none. None discards spans.
func NewSpanExporter(ctx context.Context, name string, opts Options) (sdktrace.SpanExporter, error) {
	switch name {
	case "", "none":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(opts.writer()), stdouttrace.WithPrettyPrint())
	case "otlp", "jaeger":
		url, ok := opts.endpoint("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		if !ok {
			return nil, fmt.Errorf("%w for %s traces", ErrNoEndpoint, name)
		}
		var grpcOpts []otlptracegrpc.Option
		if url != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpointURL(url))
		}
		return otlptracegrpc.New(ctx, grpcOpts...)
	}
	return nil, fmt.Errorf("exporters: unknown span exporter %q", name)
}

// NewMetricReader returns the metric reader called name: stdout, otlp,
// prometheus or none. Push exporters are wrapped in a periodic reader.
func NewMetricReader(ctx context.Context, name string, opts Options) (sdkmetric.Reader, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	switch name {
	case "prometheus":
		var promOpts []prometheus.Option
		if opts.Registerer != nil {
			promOpts = append(promOpts, prometheus.WithRegisterer(opts.Registerer))
		}
		reader, err := prometheus.New(promOpts...)
		if err != nil {
			return nil, fmt.Errorf("exporters: prometheus: %w", err)
		}
		return reader, nil
	case "", "none":
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
	case "stdout":
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(opts.writer()))
	case "otlp":
		url, ok := opts.endpoint("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		if !ok {
			return nil, fmt.Errorf("%w for metrics", ErrNoEndpoint)
		}
		var grpcOpts []otlpmetricgrpc.Option
		if url != "" {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithEndpointURL(url))
		}
		exp, err = otlpmetricgrpc.New(ctx, grpcOpts...)
	default:
		return nil, fmt.Errorf("exporters: unknown metric exporter %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("exporters: %s metrics: %w", name, err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
