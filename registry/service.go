package registry

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jonwraymond/fleetwatch/observe"
)

// ProbeKind selects how a service's health is actively checked.
type ProbeKind string

const (
	// ProbeHTTP issues a GET or HEAD against HealthURL.
	ProbeHTTP ProbeKind = "http"
	// ProbeCommand runs Command against the service container.
	ProbeCommand ProbeKind = "command"
	// ProbeContainerOnly has no independent signal and defers to container state.
	ProbeContainerOnly ProbeKind = "container"
)

// Valid reports whether k is one of the known probe kinds.
func (k ProbeKind) Valid() bool {
	switch k {
	case ProbeHTTP, ProbeCommand, ProbeContainerOnly:
		return true
	default:
		return false
	}
}

// DefaultCategory is assigned to services without a category.
const DefaultCategory = "other"

// Service describes one monitored service. Services are immutable once a
// Registry has been built from them.
type Service struct {
	ID            string    `koanf:"id" json:"id"`
	Name          string    `koanf:"name" json:"name"`
	Description   string    `koanf:"description" json:"description,omitempty"`
	ContainerName string    `koanf:"container_name" json:"container_name"`
	Port          int       `koanf:"port" json:"port,omitempty"`
	HealthURL     string    `koanf:"health_url" json:"health_url,omitempty"`
	HealthMethod  string    `koanf:"health_method" json:"health_method,omitempty"`
	AuthHeader    string    `koanf:"auth_header" json:"-"`
	ProbeKind     ProbeKind `koanf:"probe" json:"probe"`
	Command       []string  `koanf:"command" json:"command,omitempty"`
	Category      string    `koanf:"category" json:"category"`
	Layer         string    `koanf:"layer" json:"layer,omitempty"`

	// ContainerDefined marks services whose status is defined only by their
	// container, such as an auto-updater with no health concept.
	ContainerDefined bool `koanf:"container_defined" json:"container_defined,omitempty"`
}

// Meta returns the telemetry identity of the service.
func (s Service) Meta() observe.ServiceMeta {
	return observe.ServiceMeta{
		ID:            s.ID,
		Name:          s.Name,
		Category:      s.Category,
		ContainerName: s.ContainerName,
		ProbeKind:     string(s.ProbeKind),
	}
}

// InferProbeKind picks a probe kind from the fields present when none was
// configured: HealthURL wins over Command, and neither means container-only.
func InferProbeKind(s Service) ProbeKind {
	switch {
	case s.ProbeKind != "":
		return s.ProbeKind
	case s.HealthURL != "":
		return ProbeHTTP
	case len(s.Command) > 0:
		return ProbeCommand
	default:
		return ProbeContainerOnly
	}
}

// normalize fills defaults and validates s.
func normalize(s Service) (Service, error) {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		return s, fmt.Errorf("%w: id is required", ErrInvalidService)
	}
	if strings.ContainsAny(s.ID, " \t\r\n/") {
		return s, fmt.Errorf("%w: %s: id must not contain whitespace or '/'", ErrInvalidService, s.ID)
	}

	s.ContainerName = strings.TrimSpace(s.ContainerName)
	if s.ContainerName == "" {
		return s, fmt.Errorf("%w: %s: container_name is required", ErrInvalidService, s.ID)
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Category == "" {
		s.Category = DefaultCategory
	}
	if s.Port < 0 || s.Port > 65535 {
		return s, fmt.Errorf("%w: %s: port %d out of range", ErrInvalidService, s.ID, s.Port)
	}

	s.ProbeKind = ProbeKind(strings.ToLower(string(InferProbeKind(s))))
	if !s.ProbeKind.Valid() {
		return s, fmt.Errorf("%w: %s: unknown probe kind %q", ErrInvalidService, s.ID, s.ProbeKind)
	}

	switch s.ProbeKind {
	case ProbeHTTP:
		if err := validateURL(s.HealthURL); err != nil {
			return s, fmt.Errorf("%w: %s: %v", ErrInvalidService, s.ID, err)
		}
		s.HealthMethod = strings.ToUpper(strings.TrimSpace(s.HealthMethod))
		if s.HealthMethod == "" {
			s.HealthMethod = "HEAD"
		}
		if s.HealthMethod != "GET" && s.HealthMethod != "HEAD" {
			return s, fmt.Errorf("%w: %s: health_method must be GET or HEAD, got %q", ErrInvalidService, s.ID, s.HealthMethod)
		}
	case ProbeCommand:
		if len(s.Command) == 0 || strings.TrimSpace(s.Command[0]) == "" {
			return s, fmt.Errorf("%w: %s: command probe requires a command", ErrInvalidService, s.ID)
		}
	}

	s.Command = append([]string(nil), s.Command...)
	return s, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("http probe requires health_url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("health_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("health_url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("health_url has no host")
	}
	return nil
}
