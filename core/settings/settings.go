package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/launchpad/core/config"
	"github.com/dmitrymomot/launchpad/core/logger"
)

// DatabaseProvider identifies the active persistence backend.
type DatabaseProvider string

// AuthProvider identifies the active authentication backend.
type AuthProvider string

// EmailProvider identifies the active mail backend.
type EmailProvider string

// Environment identifies the runtime mode.
type Environment string

const (
	// DatabaseSupabase selects the hosted REST-over-HTTP Postgres backend.
	DatabaseSupabase DatabaseProvider = "supabase"
	// DatabaseNeon selects a direct Postgres connection string backend.
	DatabaseNeon DatabaseProvider = "neon"

	// AuthSupabase selects the hosted GoTrue authentication backend.
	AuthSupabase AuthProvider = "supabase"
	// AuthLocal selects the self-hosted credential flow backend.
	AuthLocal AuthProvider = "local"

	EmailSES      EmailProvider = "ses"
	EmailPostmark EmailProvider = "postmark"
	EmailSMTP     EmailProvider = "smtp"
	EmailDev      EmailProvider = "dev"

	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
)

// ErrInvalidSettings is returned when the environment fails validation in
// production mode.
var ErrInvalidSettings = errors.New("invalid environment configuration")

// Settings is the process-wide, validate-once configuration surface.
// Credential fields are optional at resolution time; each is required only
// by the backend that uses it and checked at that backend's first use.
type Settings struct {
	DatabaseProvider DatabaseProvider `env:"DATABASE_PROVIDER" envDefault:"supabase"`
	AuthProvider     AuthProvider     `env:"AUTH_PROVIDER" envDefault:"supabase"`
	EmailProvider    EmailProvider    `env:"EMAIL_PROVIDER" envDefault:"dev"`

	// Supabase (when DATABASE_PROVIDER=supabase or AUTH_PROVIDER=supabase)
	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseAnonKey    string `env:"SUPABASE_ANON_KEY"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`

	// Neon (when DATABASE_PROVIDER=neon)
	DatabaseURL string `env:"DATABASE_URL"`

	// Local auth (when AUTH_PROVIDER=local). RedisURL is optional and
	// enables cross-instance token revocation.
	AuthSecret string `env:"AUTH_SECRET"`
	RedisURL   string `env:"REDIS_URL"`

	// AWS SES (when EMAIL_PROVIDER=ses)
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// Postmark (when EMAIL_PROVIDER=postmark)
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	// SMTP (when EMAIL_PROVIDER=smtp)
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPTLSMode  string `env:"SMTP_TLS_MODE" envDefault:"starttls"`

	// Mail identity shared by every email backend.
	EmailFrom    string `env:"EMAIL_FROM"`
	EmailReplyTo string `env:"EMAIL_REPLY_TO"`

	// App
	Environment  Environment `env:"APP_ENV" envDefault:"development"`
	AppURL       string      `env:"APP_URL"`
	ProductSlug  string      `env:"PRODUCT_SLUG" envDefault:"unknown"`
	MetricsToken string      `env:"METRICS_TOKEN"`
}

// Resolve loads and validates settings from the environment. Outside
// production an invalid environment is logged and defaults are returned so
// the application can boot in a degraded state; in production the error is
// returned and startup must abort.
func Resolve(log *slog.Logger) (Settings, error) {
	var s Settings
	err := config.Load(&s)
	if err == nil {
		err = s.Validate()
	}
	return finalize(s, err, os.Getenv("APP_ENV"), log)
}

// finalize applies the runtime-mode policy to a validation outcome. The
// production check cannot trust the possibly-unparsed settings, so the raw
// APP_ENV value is passed in separately.
func finalize(s Settings, err error, rawEnv string, log *slog.Logger) (Settings, error) {
	if err == nil {
		return s, nil
	}

	if Environment(rawEnv) == EnvProduction {
		return Settings{}, errors.Join(ErrInvalidSettings, err)
	}

	if log != nil {
		log.Error("invalid environment configuration, booting with defaults", logger.Error(err))
	}
	return Defaults(), nil
}

// Defaults returns the settings used when the environment fails validation
// in a non-production runtime. All credentials are empty, so every backend
// reports itself as not configured rather than misbehaving.
func Defaults() Settings {
	return Settings{
		DatabaseProvider: DatabaseSupabase,
		AuthProvider:     AuthSupabase,
		EmailProvider:    EmailDev,
		AWSRegion:        "us-east-1",
		Environment:      EnvDevelopment,
		ProductSlug:      "unknown",
	}
}

// Validate checks that every enum field holds a known member. Missing
// credentials are deliberately not validated here; see the package doc.
func (s Settings) Validate() error {
	switch s.DatabaseProvider {
	case DatabaseSupabase, DatabaseNeon:
	default:
		return fmt.Errorf("unknown database provider %q", s.DatabaseProvider)
	}

	switch s.AuthProvider {
	case AuthSupabase, AuthLocal:
	default:
		return fmt.Errorf("unknown auth provider %q", s.AuthProvider)
	}

	switch s.EmailProvider {
	case EmailSES, EmailPostmark, EmailSMTP, EmailDev:
	default:
		return fmt.Errorf("unknown email provider %q", s.EmailProvider)
	}

	switch s.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("unknown environment %q", s.Environment)
	}

	return nil
}

// IsSupabaseDatabase reports whether the hosted REST backend serves persistence.
func (s Settings) IsSupabaseDatabase() bool { return s.DatabaseProvider == DatabaseSupabase }

// IsNeonDatabase reports whether the connection-string backend serves persistence.
func (s Settings) IsNeonDatabase() bool { return s.DatabaseProvider == DatabaseNeon }

// IsSupabaseAuth reports whether the hosted auth service is active.
func (s Settings) IsSupabaseAuth() bool { return s.AuthProvider == AuthSupabase }

// IsLocalAuth reports whether the self-hosted credential flow is active.
func (s Settings) IsLocalAuth() bool { return s.AuthProvider == AuthLocal }

// IsDevEmail reports whether outgoing mail is written to local files
// instead of being sent.
func (s Settings) IsDevEmail() bool { return s.EmailProvider == EmailDev }

func (s Settings) IsDevelopment() bool { return s.Environment == EnvDevelopment }
func (s Settings) IsProduction() bool  { return s.Environment == EnvProduction }
func (s Settings) IsTest() bool        { return s.Environment == EnvTest }
