package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/launchpad/core/auth"
	"github.com/dmitrymomot/launchpad/core/health"
	"github.com/dmitrymomot/launchpad/core/logger"
	"github.com/dmitrymomot/launchpad/core/metrics"
)

// Router assembles the full HTTP surface: the provider-backed auth API,
// health and metrics reporters, and a Prometheus scrape endpoint for
// operational counters.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	reg := prometheus.NewRegistry()
	r.Use(newHTTPMetrics(reg).middleware)
	r.Use(bearerToken)

	r.Get("/", a.handleLanding)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.Handler(health.HandlerConfig{
			Version:   Version,
			Product:   a.Settings.ProductSlug,
			StartedAt: a.StartedAt,
			Checks:    a.HealthChecks(),
		}))
		r.Get("/metrics", metrics.Handler(metrics.HandlerConfig{
			Product:   a.Settings.ProductSlug,
			Token:     a.Settings.MetricsToken,
			Collector: a.MetricsCollector(),
			Logger:    a.Log,
		}))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", a.handleSession)
			r.Get("/user", a.handleUser)
			r.Post("/signin", a.handleSignIn)
			r.Post("/signup", a.handleSignUp)
			r.Post("/signout", a.handleSignOut)
			r.Post("/reset-password", a.handleResetPassword)
		})

		if a.Settings.IsLocalAuth() {
			if flow, err := a.Flow(context.Background()); err == nil {
				r.Mount("/auth/flow", flow.Routes())
			} else {
				a.Log.Error("credential flow unavailable", logger.Error(err))
			}
		}
	})

	return r
}

// bearerToken lifts the Authorization header into the request context so
// providers can resolve the caller's session.
func bearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			r = r.WithContext(auth.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) handleLanding(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"product": a.Settings.ProductSlug,
		"version": Version,
	})
}

func (a *App) handleSession(w http.ResponseWriter, r *http.Request) {
	provider, err := a.Auth()
	if err != nil {
		respondAuthError(w, err)
		return
	}
	session, err := provider.Session(r.Context())
	if err != nil {
		respondAuthError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"session": session})
}

func (a *App) handleUser(w http.ResponseWriter, r *http.Request) {
	provider, err := a.Auth()
	if err != nil {
		respondAuthError(w, err)
		return
	}
	user, err := provider.User(r.Context())
	if err != nil {
		respondAuthError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"user": user})
}

func (a *App) handleSignIn(w http.ResponseWriter, r *http.Request) {
	a.handleCredentials(w, r, func(p auth.Provider, email, password string) auth.Result {
		return p.SignIn(r.Context(), email, password)
	})
}

func (a *App) handleSignUp(w http.ResponseWriter, r *http.Request) {
	a.handleCredentials(w, r, func(p auth.Provider, email, password string) auth.Result {
		return p.SignUp(r.Context(), email, password)
	})
}

func (a *App) handleCredentials(w http.ResponseWriter, r *http.Request, op func(auth.Provider, string, string) auth.Result) {
	provider, err := a.Auth()
	if err != nil {
		respondAuthError(w, err)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	result := op(provider, req.Email, req.Password)
	if result.Err != nil {
		respondAuthError(w, result.Err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"user": result.User, "session": result.Session})
}

func (a *App) handleSignOut(w http.ResponseWriter, r *http.Request) {
	provider, err := a.Auth()
	if err != nil {
		respondAuthError(w, err)
		return
	}
	if err := provider.SignOut(r.Context()); err != nil {
		respondAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	provider, err := a.Auth()
	if err != nil {
		respondAuthError(w, err)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	if err := provider.ResetPassword(r.Context(), req.Email); err != nil {
		respondAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// respondAuthError maps the auth error taxonomy onto HTTP statuses while
// keeping the backend's message available to the UI.
func respondAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrUnsupported):
		status = http.StatusNotImplemented
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// httpMetrics records request counts and latency for the Prometheus
// scrape endpoint.
type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "launchpad_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "launchpad_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *httpMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		m.requests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		m.duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
