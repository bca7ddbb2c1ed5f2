package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/fleetwatch/auth"
	"github.com/jonwraymond/fleetwatch/fleet"
	"github.com/jonwraymond/fleetwatch/observe"
	"github.com/jonwraymond/fleetwatch/registry"
)

// Config configures a Handler.
type Config struct {
	// Monitor answers every fleet query. Required.
	Monitor *fleet.Monitor

	// Layers describes the architecture tiers served by /api/layers.
	Layers []registry.Layer

	// Guard protects the mutation routes.
	// Default: nil, which allows every request
	Guard *auth.Guard

	// Discovery enables /api/discovery. Disabled answers 403.
	Discovery bool

	// Metrics serves /metrics. The route is absent when nil.
	Metrics http.Handler

	// Logger records requests and denied or failed calls.
	// Default: observe.NopLogger()
	Logger observe.Logger
}

// Handler serves the fleet API.
type Handler struct {
	monitor   *fleet.Monitor
	layers    []registry.Layer
	guard     *auth.Guard
	discovery bool
	metrics   http.Handler
	logger    observe.Logger
}

// NewHandler validates cfg and builds a Handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Monitor == nil {
		return nil, ErrNilMonitor
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	return &Handler{
		monitor:   cfg.Monitor,
		layers:    append([]registry.Layer(nil), cfg.Layers...),
		guard:     cfg.Guard,
		discovery: cfg.Discovery,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Warn(r.Context(), "request failed",
			observe.F("path", r.URL.Path),
			observe.F("status", code),
			observe.F("request_id", RequestIDFromContext(r.Context())),
			observe.F("error", err),
		)
	}
	writeError(w, code, err.Error())
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Services  map[string]fleet.ServiceStatus `json:"services"`
	Timestamp time.Time                      `json:"timestamp"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	list, err := h.monitor.Services(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	byID := make(map[string]fleet.ServiceStatus, len(list))
	for _, st := range list {
		byID[st.ID] = st
	}
	writeJSON(w, http.StatusOK, statusResponse{Services: byID, Timestamp: time.Now().UTC()})
}

type servicesResponse struct {
	Services  []fleet.ServiceStatus `json:"services"`
	Total     int                   `json:"total"`
	Category  string                `json:"category,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	list, err := h.monitor.Filtered(r.Context(), category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantResources(r) {
		list = h.monitor.WithResources(r.Context(), list)
	}
	writeJSON(w, http.StatusOK, servicesResponse{
		Services:  list,
		Total:     len(list),
		Category:  category,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := h.monitor.Service(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if wantResources(r) {
		st = h.monitor.WithResources(r.Context(), []fleet.ServiceStatus{st})[0]
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) listLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"layers": h.monitor.Registry().Layers(h.layers),
	})
}

type metricsResponse struct {
	Summary     fleet.Summary        `json:"summary"`
	System      fleet.SystemSnapshot `json:"system"`
	Docker      *fleet.DockerStats   `json:"docker"`
	DockerError string               `json:"docker_error,omitempty"`
}

func (h *Handler) fleetMetrics(w http.ResponseWriter, r *http.Request) {
	sum, err := h.monitor.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sys, err := h.monitor.System(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := metricsResponse{Summary: sum, System: sys}
	if d, err := h.monitor.Docker(r.Context()); err != nil {
		resp.DockerError = err.Error()
	} else {
		resp.Docker = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

type systemStatsResponse struct {
	System      fleet.SystemSnapshot `json:"system"`
	Docker      *fleet.DockerStats   `json:"docker"`
	DockerError string               `json:"docker_error,omitempty"`
	CacheAge    map[string]float64   `json:"cache_age_seconds"`
}

func (h *Handler) systemStats(w http.ResponseWriter, r *http.Request) {
	sys, err := h.monitor.System(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := systemStatsResponse{System: sys, CacheAge: make(map[string]float64, 2)}
	if d, err := h.monitor.Docker(r.Context()); err != nil {
		resp.DockerError = err.Error()
	} else {
		resp.Docker = &d
	}
	for _, key := range []string{fleet.KeySystem, fleet.KeyDocker} {
		if age, ok := h.monitor.CacheAge(key); ok {
			resp.CacheAge[key] = age.Seconds()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) discover(w http.ResponseWriter, r *http.Request) {
	if !h.discovery {
		writeError(w, http.StatusForbidden, "service discovery is disabled")
		return
	}
	writeJSON(w, http.StatusOK, h.monitor.Discover(r.Context()))
}

func (h *Handler) cacheInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.CacheStats())
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	n := h.monitor.Clear()
	h.logger.Info(r.Context(), "cache cleared",
		observe.F("removed", n),
		observe.F("principal", auth.PrincipalFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

func (h *Handler) invalidateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := h.monitor.Invalidate(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "service cache invalidated",
		observe.F("service.id", id),
		observe.F("removed", n),
		observe.F("principal", auth.PrincipalFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]any{"service": id, "invalidated": n})
}

func wantResources(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("resources"))
	return err == nil && v
}
