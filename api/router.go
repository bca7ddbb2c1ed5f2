package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/fleetwatch/auth"
)

// Router returns the routing tree for h.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(loggingMiddleware(h.logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", h.healthz)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/layers", h.listLayers)
		r.Get("/metrics", h.fleetMetrics)
		r.Get("/system/stats", h.systemStats)
		r.Get("/discovery", h.discover)

		r.Route("/services", func(r chi.Router) {
			r.Get("/", h.listServices)
			r.Get("/{id}", h.getService)
			r.With(h.guard.Require(auth.ActionInvalidate)).Post("/{id}/invalidate", h.invalidateService)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/info", h.cacheInfo)
			r.With(h.guard.Require(auth.ActionClearCache)).Post("/clear", h.clearCache)
		})
	})
	return r
}
