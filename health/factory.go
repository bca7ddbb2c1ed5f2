package health

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/fleetwatch/registry"
)

// Options carries the shared settings NewProber applies to every prober.
type Options struct {
	HTTPTimeout    time.Duration
	CommandTimeout time.Duration
	Collapse       bool
	Client         *http.Client
	Runner         CommandRunner

	// ExecPrefix overrides DefaultExecPrefix for command probes.
	ExecPrefix []string
}

// NewProber builds the prober for svc by dispatching on its probe kind.
// It returns a *ProbeConfigError when svc cannot be probed as described.
func NewProber(svc registry.Service, opts Options) (Prober, error) {
	kind := registry.InferProbeKind(svc)

	switch kind {
	case registry.ProbeHTTP:
		if svc.HealthURL == "" {
			return nil, &ProbeConfigError{ServiceID: svc.ID, Field: "health_url", Reason: "required for http probes"}
		}
		u, err := url.Parse(svc.HealthURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, &ProbeConfigError{ServiceID: svc.ID, Field: "health_url", Reason: "must be an absolute http or https URL"}
		}
		method := strings.ToUpper(svc.HealthMethod)
		if method == "" {
			method = http.MethodHead
		}
		if method != http.MethodGet && method != http.MethodHead {
			return nil, &ProbeConfigError{ServiceID: svc.ID, Field: "health_method", Reason: "must be GET or HEAD"}
		}
		return NewHTTPProber(HTTPConfig{
			URL:        svc.HealthURL,
			Method:     method,
			AuthHeader: svc.AuthHeader,
			Timeout:    opts.HTTPTimeout,
			Client:     opts.Client,
			Collapse:   opts.Collapse,
		}), nil

	case registry.ProbeCommand:
		if len(svc.Command) == 0 {
			return nil, &ProbeConfigError{ServiceID: svc.ID, Field: "command", Reason: "required for command probes"}
		}
		if svc.ContainerName == "" {
			return nil, &ProbeConfigError{ServiceID: svc.ID, Field: "container_name", Reason: "required for command probes"}
		}
		return NewCommandProber(CommandConfig{
			Container: svc.ContainerName,
			Command:   svc.Command,
			Prefix:    opts.ExecPrefix,
			Timeout:   opts.CommandTimeout,
			Runner:    opts.Runner,
		}), nil

	case registry.ProbeContainerOnly:
		return ContainerOnlyProber{}, nil

	default:
		return nil, &ProbeConfigError{ServiceID: svc.ID, Field: "probe", Reason: "unknown probe kind " + string(kind)}
	}
}
