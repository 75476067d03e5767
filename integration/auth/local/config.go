package local

import "time"

// Config holds the signing material for self-issued session tokens.
// Secret is the only required value; an empty secret degrades every
// operation to an explicit configuration error.
type Config struct {
	Secret   string        `env:"AUTH_SECRET"`
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	ResetTTL time.Duration `env:"AUTH_RESET_TTL" envDefault:"1h"`
	Issuer   string        `env:"AUTH_ISSUER" envDefault:"launchpad"`
}
