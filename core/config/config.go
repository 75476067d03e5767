package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilConfig is returned when a nil pointer is passed to Load.
	ErrNilConfig = errors.New("config target cannot be nil")
	// ErrParseFailed is returned when environment parsing fails; the
	// underlying cause is joined for inspection.
	ErrParseFailed = errors.New("failed to parse environment variables")
)

var (
	// cache stores one loaded value per configuration type.
	cache sync.Map // reflect.Type -> struct value

	// dotenvOnce guards the one-time .env autoload. A missing .env file is
	// not an error: production deployments configure the process environment
	// directly.
	dotenvOnce sync.Once
)

// Load parses environment variables into cfg. The first call for a given
// type reads the environment; subsequent calls return the cached value, so
// settings are immutable for the process lifetime.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	t := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(t); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParseFailed, err)
	}

	// LoadOrStore resolves the race where two goroutines parse concurrently:
	// both parsed the same environment, the first stored value wins.
	actual, _ := cache.LoadOrStore(t, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for application
// startup where missing configuration should prevent the service from
// starting at all.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
