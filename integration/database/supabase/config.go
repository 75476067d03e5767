package supabase

import "time"

// Config holds the Supabase project endpoint and keys. ProjectURL and
// AnonKey are required; ServiceKey upgrades server-side calls to bypass
// row-level security and must never reach client-side code.
type Config struct {
	ProjectURL string        `env:"SUPABASE_URL"`
	AnonKey    string        `env:"SUPABASE_ANON_KEY"`
	ServiceKey string        `env:"SUPABASE_SERVICE_ROLE_KEY"`
	Timeout    time.Duration `env:"SUPABASE_HTTP_TIMEOUT" envDefault:"10s"`
}

// key returns the strongest credential available for server-side calls.
func (c Config) key() string {
	if c.ServiceKey != "" {
		return c.ServiceKey
	}
	return c.AnonKey
}
