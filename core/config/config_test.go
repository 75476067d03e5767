package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchpad/core/config"
)

type serverConfig struct {
	Host string `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Port int    `env:"TEST_CFG_PORT" envDefault:"8080"`
}

type requiredConfig struct {
	Token string `env:"TEST_CFG_REQUIRED_TOKEN,required"`
}

type cachedConfig struct {
	Value string `env:"TEST_CFG_CACHED_VALUE" envDefault:"initial"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when variables are unset", func(t *testing.T) {
		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParseFailed)
	})

	t.Run("rejects nil target", func(t *testing.T) {
		err := config.Load[serverConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilConfig)
	})

	t.Run("returns cached value on repeated loads", func(t *testing.T) {
		t.Setenv("TEST_CFG_CACHED_VALUE", "first")

		var cfg1 cachedConfig
		require.NoError(t, config.Load(&cfg1))
		assert.Equal(t, "first", cfg1.Value)

		// Changing the environment after the first load must not be
		// observed: the type is cached for the process lifetime.
		t.Setenv("TEST_CFG_CACHED_VALUE", "second")

		var cfg2 cachedConfig
		require.NoError(t, config.Load(&cfg2))
		assert.Equal(t, cfg1, cfg2)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on invalid configuration", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("does not panic on valid configuration", func(t *testing.T) {
		assert.NotPanics(t, func() {
			var cfg serverConfig
			config.MustLoad(&cfg)
		})
	})
}
