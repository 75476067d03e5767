package metrics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/launchpad/core/logger"
)

// HandlerConfig wires the metrics handler to its collector and identity.
// Token, when set, must match the request's bearer token; an empty token
// disables the check for local development.
type HandlerConfig struct {
	Product   string
	Token     string
	Collector Collector
	Logger    *slog.Logger
}

// Handler returns an HTTP handler serving the product metrics report.
// Collector failures are logged and answered with an empty snapshot rather
// than an error status: a broken metric source must not look like a broken
// product to the aggregator.
func Handler(cfg HandlerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Token != "" && r.Header.Get("Authorization") != "Bearer "+cfg.Token {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}

		period := ParsePeriod(r.URL.Query().Get("period"))

		var snapshot Snapshot
		if cfg.Collector != nil {
			collected, err := cfg.Collector.Collect(r.Context(), period)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.ErrorContext(r.Context(), "metrics collection failed", logger.Error(err))
				}
			} else {
				snapshot = collected
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Report{
			Product:   cfg.Product,
			Timestamp: time.Now().UTC(),
			Period:    period,
			Metrics:   snapshot,
		})
	}
}
