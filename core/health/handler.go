package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// HandlerConfig wires the report handler to its checks and identity.
type HandlerConfig struct {
	Version   string
	Product   string
	StartedAt time.Time
	Checks    Checks
}

// Handler returns an HTTP handler serving the JSON health report.
// Healthy and degraded reports answer 200 so partially configured
// development environments stay reachable; unhealthy answers 503.
func Handler(cfg HandlerConfig) http.HandlerFunc {
	if cfg.StartedAt.IsZero() {
		cfg.StartedAt = time.Now()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		report := Run(r.Context(), cfg.Checks, cfg.Version, cfg.Product, cfg.StartedAt)

		code := http.StatusOK
		if report.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}
