package supabase

import "time"

// Config holds the Supabase auth endpoint and keys. The provider is
// constructed lazily, so missing values surface from the first operation
// rather than at selection time.
type Config struct {
	ProjectURL string        `env:"SUPABASE_URL"`
	AnonKey    string        `env:"SUPABASE_ANON_KEY"`
	Timeout    time.Duration `env:"SUPABASE_HTTP_TIMEOUT" envDefault:"10s"`
}
