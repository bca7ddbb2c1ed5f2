package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/fleetwatch/cache"
	"github.com/jonwraymond/fleetwatch/fleet"
)

// ErrNilMonitor is returned by NewHandler when no monitor is given.
var ErrNilMonitor = errors.New("api: monitor is required")

// statusFor maps a monitor error to an HTTP status code.
func statusFor(err error) int {
	var fe *cache.FetchError
	switch {
	case errors.Is(err, fleet.ErrServiceNotFound):
		return http.StatusNotFound
	case errors.As(err, &fe):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
