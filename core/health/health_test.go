package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchpad/core/health"
)

func stateCheck(state health.CheckState) health.Check {
	return func(context.Context) health.CheckState { return state }
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		states []health.CheckState
		want   health.Status
	}{
		{
			name:   "any error dominates",
			states: []health.CheckState{health.StateError, health.StateOK, health.StateNotConfigured},
			want:   health.StatusUnhealthy,
		},
		{
			name:   "not configured degrades",
			states: []health.CheckState{health.StateNotConfigured, health.StateOK, health.StateOK},
			want:   health.StatusDegraded,
		},
		{
			name:   "all passing is healthy",
			states: []health.CheckState{health.StateOK, health.StateOK, health.StateOK},
			want:   health.StatusHealthy,
		},
		{
			name:   "error after not configured still unhealthy",
			states: []health.CheckState{health.StateNotConfigured, health.StateError, health.StateOK},
			want:   health.StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, health.Aggregate(tt.states...))
		})
	}
}

func TestGuard(t *testing.T) {
	t.Parallel()

	t.Run("recovers a panicking check into error state", func(t *testing.T) {
		t.Parallel()

		check := health.Guard(func(context.Context) health.CheckState {
			panic("backend client exploded")
		})
		assert.Equal(t, health.StateError, check(context.Background()))
	})

	t.Run("treats nil check as not configured", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, health.StateNotConfigured, health.Guard(nil)(context.Background()))
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	report := health.Run(context.Background(), health.Checks{
		Database: stateCheck(health.StateOK),
		Auth:     stateCheck(health.StateOK),
		Email:    stateCheck(health.StateNotConfigured),
	}, "1.2.3", "starter", time.Now().Add(-90*time.Second))

	assert.Equal(t, health.StatusDegraded, report.Status)
	assert.Equal(t, "1.2.3", report.Version)
	assert.Equal(t, "starter", report.Product)
	assert.Equal(t, health.StateOK, report.Checks.Database)
	assert.Equal(t, health.StateNotConfigured, report.Checks.Email)
	assert.GreaterOrEqual(t, report.Uptime, int64(90))
}

func TestHandler(t *testing.T) {
	t.Parallel()

	t.Run("serves 200 for degraded report", func(t *testing.T) {
		t.Parallel()

		handler := health.Handler(health.HandlerConfig{
			Version: "0.1.0",
			Product: "starter",
			Checks: health.Checks{
				Database: stateCheck(health.StateNotConfigured),
				Auth:     stateCheck(health.StateOK),
				Email:    stateCheck(health.StateOK),
			},
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, health.StatusDegraded, report.Status)
		assert.Equal(t, health.StateNotConfigured, report.Checks.Database)
	})

	t.Run("serves 503 for unhealthy report", func(t *testing.T) {
		t.Parallel()

		handler := health.Handler(health.HandlerConfig{
			Checks: health.Checks{
				Database: stateCheck(health.StateError),
				Auth:     stateCheck(health.StateOK),
				Email:    stateCheck(health.StateNotConfigured),
			},
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, health.StatusUnhealthy, report.Status)
	})
}
