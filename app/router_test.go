package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchpad/app"
	"github.com/dmitrymomot/launchpad/core/settings"
)

func localAuthSettings(secret string) settings.Settings {
	s := settings.Defaults()
	s.AuthProvider = settings.AuthLocal
	s.AuthSecret = secret
	s.ProductSlug = "launchpad-test"
	return s
}

func signSession(t *testing.T, secret, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "launchpad",
		ID:        "jti-router",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestRouter_Landing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(app.New(localAuthSettings("router-secret"), nil).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "launchpad-test", body["product"])
}

func TestRouter_Session(t *testing.T) {
	t.Parallel()

	const secret = "router-secret"
	srv := httptest.NewServer(app.New(localAuthSettings(secret), nil).Router())
	t.Cleanup(srv.Close)

	t.Run("bearer token resolves the session", func(t *testing.T) {
		t.Parallel()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/session", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signSession(t, secret, "user-42"))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Session *struct {
				User struct {
					ID string `json:"id"`
				} `json:"user"`
				Expires time.Time `json:"expires"`
			} `json:"session"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.Session)
		assert.Equal(t, "user-42", body.Session.User.ID)
		assert.True(t, body.Session.Expires.After(time.Now()))
	})

	t.Run("no token yields a null session", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/api/auth/session")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Nil(t, body["session"])
	})
}

func TestRouter_AuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("local provider routes credentials to the flow", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(app.New(localAuthSettings("router-secret"), nil).Router())
		defer srv.Close()

		payload, _ := json.Marshal(map[string]string{"email": "a@b.co", "password": "pw"})
		resp, err := http.Post(srv.URL+"/api/auth/signin", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	})

	t.Run("unconfigured provider is 503", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(app.New(settings.Defaults(), nil).Router())
		defer srv.Close()

		payload, _ := json.Marshal(map[string]string{"email": "a@b.co", "password": "pw"})
		resp, err := http.Post(srv.URL+"/api/auth/signin", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	s := localAuthSettings("router-secret")
	s.MetricsToken = "metrics-secret"
	srv := httptest.NewServer(app.New(s, nil).Router())
	t.Cleanup(srv.Close)

	t.Run("health reports degraded without a database", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		// Degraded still serves 200; only unhealthy flips to 503.
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var report struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, "degraded", report.Status)
	})

	t.Run("metrics requires the bearer token", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/api/metrics")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/metrics?period=weekly", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer metrics-secret")
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var report struct {
			Period  string          `json:"period"`
			Metrics json.RawMessage `json:"metrics"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, "weekly", report.Period)
		assert.NotEmpty(t, report.Metrics)
	})

	t.Run("prometheus scrape endpoint", func(t *testing.T) {
		t.Parallel()

		// Generate at least one observation.
		resp, err := http.Get(srv.URL + "/")
		require.NoError(t, err)
		resp.Body.Close()

		resp, err = http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		buf := new(bytes.Buffer)
		_, err = buf.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "launchpad_http_requests_total")
	})
}
