package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample fraction outside [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: unknown log level")
)

// Bounds for TracingConfig.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// Accepted names for the telemetry and logging sections. The empty string
// means "none" for exporters and "info" for the log level.
var (
	ValidTracingExporters = []string{"", "none", "stdout", "otlp", "jaeger"}
	ValidMetricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	ValidLogLevels        = []string{"", "debug", "info", "warn", "error"}
)

// RedactedFields are log field keys whose values are replaced before
// output. Service descriptors carry bearer tokens in auth_header.
var RedactedFields = []string{
	"authorization",
	"auth_header",
	"api_key",
	"apiKey",
	"jwt_secret",
	"password",
	"secret",
	"token",
}
