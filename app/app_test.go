package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchpad/app"
	"github.com/dmitrymomot/launchpad/core/auth"
	"github.com/dmitrymomot/launchpad/core/db"
	"github.com/dmitrymomot/launchpad/core/health"
	"github.com/dmitrymomot/launchpad/core/metrics"
	"github.com/dmitrymomot/launchpad/core/settings"
)

func supabaseSettings(url string) settings.Settings {
	s := settings.Defaults()
	s.SupabaseURL = url
	s.SupabaseAnonKey = "anon-key"
	return s
}

func TestDatabase(t *testing.T) {
	t.Parallel()

	t.Run("selection is memoized", func(t *testing.T) {
		t.Parallel()

		a := app.New(supabaseSettings("https://proj.supabase.co"), nil)
		first, err := a.Database(context.Background())
		require.NoError(t, err)
		second, err := a.Database(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("missing credentials fail selection", func(t *testing.T) {
		t.Parallel()

		a := app.New(settings.Defaults(), nil)
		_, err := a.Database(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, db.ErrNotConfigured)

		// The failure is memoized too.
		_, again := a.Database(context.Background())
		assert.Equal(t, err, again)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		s := settings.Defaults()
		s.DatabaseProvider = "oracle"
		a := app.New(s, nil)
		_, err := a.Database(context.Background())
		assert.ErrorContains(t, err, "unknown database provider")
	})
}

func TestAuth(t *testing.T) {
	t.Parallel()

	t.Run("selection succeeds without credentials", func(t *testing.T) {
		t.Parallel()

		a := app.New(settings.Defaults(), nil)
		provider, err := a.Auth()
		require.NoError(t, err)
		require.NotNil(t, provider)

		// Operations report the missing configuration instead.
		result := provider.SignIn(context.Background(), "a@b.co", "pw")
		assert.ErrorIs(t, result.Err, auth.ErrNotConfigured)
	})

	t.Run("selection is memoized", func(t *testing.T) {
		t.Parallel()

		a := app.New(settings.Defaults(), nil)
		first, err := a.Auth()
		require.NoError(t, err)
		second, err := a.Auth()
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		s := settings.Defaults()
		s.AuthProvider = "okta"
		a := app.New(s, nil)
		_, err := a.Auth()
		assert.ErrorContains(t, err, "unknown auth provider")
	})
}

func TestFlow(t *testing.T) {
	t.Parallel()

	t.Run("requires local auth", func(t *testing.T) {
		t.Parallel()

		a := app.New(settings.Defaults(), nil)
		_, err := a.Flow(context.Background())
		assert.ErrorContains(t, err, "AUTH_PROVIDER=local")
	})

	t.Run("builds over the selected database", func(t *testing.T) {
		t.Parallel()

		s := supabaseSettings("https://proj.supabase.co")
		s.AuthProvider = settings.AuthLocal
		s.AuthSecret = "flow-secret"
		a := app.New(s, nil)

		flow, err := a.Flow(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, flow)

		again, err := a.Flow(context.Background())
		require.NoError(t, err)
		assert.Same(t, flow, again)
	})
}

func TestEmail(t *testing.T) {
	t.Parallel()

	t.Run("dev sender by default", func(t *testing.T) {
		t.Parallel()

		a := app.New(settings.Defaults(), nil)
		sender, err := a.Email(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, sender)

		again, err := a.Email(context.Background())
		require.NoError(t, err)
		assert.Same(t, sender, again)
	})

	t.Run("postmark without tokens fails selection", func(t *testing.T) {
		t.Parallel()

		s := settings.Defaults()
		s.EmailProvider = settings.EmailPostmark
		a := app.New(s, nil)
		_, err := a.Email(context.Background())
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		s := settings.Defaults()
		s.EmailProvider = "pigeon"
		a := app.New(s, nil)
		_, err := a.Email(context.Background())
		assert.ErrorContains(t, err, "unknown email provider")
	})
}

func TestHealthChecks(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured providers report not configured", func(t *testing.T) {
		t.Parallel()

		a := app.New(settings.Defaults(), nil)
		checks := a.HealthChecks()
		ctx := context.Background()

		assert.Equal(t, health.StateNotConfigured, checks.Database(ctx))
		assert.Equal(t, health.StateNotConfigured, checks.Auth(ctx))
		// Dev email is always operational.
		assert.Equal(t, health.StateOK, checks.Email(ctx))

		report := health.Run(ctx, checks, "test", "launchpad", time.Now())
		assert.Equal(t, health.StatusDegraded, report.Status)
	})

	t.Run("healthy supabase backends", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		a := app.New(supabaseSettings(srv.URL), nil)
		checks := a.HealthChecks()
		ctx := context.Background()

		assert.Equal(t, health.StateOK, checks.Database(ctx))
		assert.Equal(t, health.StateOK, checks.Auth(ctx))

		report := health.Run(ctx, checks, "test", "launchpad", time.Now())
		assert.Equal(t, health.StatusHealthy, report.Status)
	})

	t.Run("failing database is unhealthy", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		a := app.New(supabaseSettings(srv.URL), nil)
		checks := a.HealthChecks()

		report := health.Run(context.Background(), checks, "test", "launchpad", time.Now())
		assert.Equal(t, health.StatusUnhealthy, report.Status)
	})
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	t.Run("counts users from the selected database", func(t *testing.T) {
		t.Parallel()

		recent := time.Now().Add(-time.Hour).Format(time.RFC3339)
		old := time.Now().AddDate(0, -2, 0).Format(time.RFC3339)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/users", r.URL.Path)
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": "u1", "created_at": recent},
				{"id": "u2", "created_at": old},
				{"id": "u3"},
			})
		}))
		defer srv.Close()

		a := app.New(supabaseSettings(srv.URL), nil)
		snapshot, err := a.MetricsCollector().Collect(context.Background(), metrics.PeriodDaily)
		require.NoError(t, err)
		assert.Equal(t, int64(3), snapshot.TotalUsers)
		assert.Equal(t, int64(1), snapshot.NewUsers)
	})

	t.Run("unconfigured database fails collection", func(t *testing.T) {
		t.Parallel()

		a := app.New(settings.Defaults(), nil)
		_, err := a.MetricsCollector().Collect(context.Background(), metrics.PeriodDaily)
		assert.Error(t, err)
	})
}
