// Package app wires the configured providers together. Each provider is
// selected once per process from Settings and memoized, so repeated
// lookups return the same instance.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/launchpad/core/auth"
	"github.com/dmitrymomot/launchpad/core/config"
	"github.com/dmitrymomot/launchpad/core/db"
	"github.com/dmitrymomot/launchpad/core/email"
	"github.com/dmitrymomot/launchpad/core/logger"
	"github.com/dmitrymomot/launchpad/core/settings"
	localauth "github.com/dmitrymomot/launchpad/integration/auth/local"
	supaauth "github.com/dmitrymomot/launchpad/integration/auth/supabase"
	"github.com/dmitrymomot/launchpad/integration/database/neon"
	"github.com/dmitrymomot/launchpad/integration/database/redis"
	supadb "github.com/dmitrymomot/launchpad/integration/database/supabase"
	"github.com/dmitrymomot/launchpad/integration/email/postmark"
	"github.com/dmitrymomot/launchpad/integration/email/ses"
	"github.com/dmitrymomot/launchpad/integration/email/smtp"
)

// App owns the provider selection state for one process. The zero value
// is not usable; construct with New.
type App struct {
	Settings settings.Settings
	Log      *slog.Logger

	StartedAt time.Time

	dbOnce sync.Once
	db     db.Querier
	dbErr  error

	authOnce sync.Once
	auth     auth.Provider
	authErr  error

	emailOnce sync.Once
	email     email.EmailSender
	emailErr  error

	flowOnce sync.Once
	flow     *localauth.Flow
	flowErr  error

	revokerOnce sync.Once
	revoker     localauth.Revoker
}

// New creates an App around resolved settings.
func New(s settings.Settings, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{Settings: s, Log: log, StartedAt: time.Now()}
}

// Database returns the selected persistence backend. Selection is eager:
// the backend's credentials are validated on first call and the outcome
// is memoized, errors included.
func (a *App) Database(ctx context.Context) (db.Querier, error) {
	a.dbOnce.Do(func() {
		a.db, a.dbErr = a.buildDatabase(ctx)
		if a.dbErr != nil {
			a.Log.Error("database selection failed",
				logger.Provider(string(a.Settings.DatabaseProvider)), logger.Error(a.dbErr))
		}
	})
	return a.db, a.dbErr
}

func (a *App) buildDatabase(ctx context.Context) (db.Querier, error) {
	switch a.Settings.DatabaseProvider {
	case settings.DatabaseSupabase:
		return supadb.New(supadb.Config{
			ProjectURL: a.Settings.SupabaseURL,
			AnonKey:    a.Settings.SupabaseAnonKey,
			ServiceKey: a.Settings.SupabaseServiceKey,
		})
	case settings.DatabaseNeon:
		var cfg neon.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		cfg.ConnectionString = a.Settings.DatabaseURL
		pool, err := neon.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.MigrationsPath != "" {
			if err := neon.Migrate(ctx, pool, cfg, a.Log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return neon.NewQuerier(pool), nil
	default:
		return nil, fmt.Errorf("unknown database provider %q", a.Settings.DatabaseProvider)
	}
}

// Auth returns the selected auth backend. Construction is lazy by
// contract: a provider is always returned for a known enum value, and
// missing credentials surface from the first operation instead.
func (a *App) Auth() (auth.Provider, error) {
	a.authOnce.Do(func() {
		switch a.Settings.AuthProvider {
		case settings.AuthSupabase:
			a.auth = supaauth.New(supaauth.Config{
				ProjectURL: a.Settings.SupabaseURL,
				AnonKey:    a.Settings.SupabaseAnonKey,
			})
		case settings.AuthLocal:
			a.auth = localauth.New(a.localAuthConfig(), localauth.WithRevoker(a.Revoker()))
		default:
			a.authErr = fmt.Errorf("unknown auth provider %q", a.Settings.AuthProvider)
		}
	})
	return a.auth, a.authErr
}

// Flow returns the self-hosted credential flow. Only meaningful when the
// local auth provider is selected; other providers get an error.
func (a *App) Flow(ctx context.Context) (*localauth.Flow, error) {
	a.flowOnce.Do(func() {
		if !a.Settings.IsLocalAuth() {
			a.flowErr = fmt.Errorf("credential flow requires AUTH_PROVIDER=local, have %q", a.Settings.AuthProvider)
			return
		}

		querier, err := a.Database(ctx)
		if err != nil {
			a.flowErr = err
			return
		}

		opts := []localauth.FlowOption{localauth.WithFlowRevoker(a.Revoker())}
		if sender, err := a.Email(ctx); err == nil {
			opts = append(opts, localauth.WithResetEmail(sender, a.Settings.AppURL))
		} else {
			a.Log.Warn("reset emails disabled", logger.Error(err))
		}

		a.flow = localauth.NewFlow(a.localAuthConfig(), localauth.NewQuerierStore(querier), opts...)
	})
	return a.flow, a.flowErr
}

func (a *App) localAuthConfig() localauth.Config {
	var cfg localauth.Config
	if err := config.Load(&cfg); err != nil {
		cfg = localauth.Config{TokenTTL: 24 * time.Hour, ResetTTL: time.Hour, Issuer: "launchpad"}
	}
	cfg.Secret = a.Settings.AuthSecret
	return cfg
}

// Revoker returns the shared token revocation backend: Redis when
// REDIS_URL is set, in-process memory otherwise.
func (a *App) Revoker() localauth.Revoker {
	a.revokerOnce.Do(func() {
		if a.Settings.RedisURL == "" {
			a.revoker = localauth.NewMemoryRevoker()
			return
		}

		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			cfg = redis.Config{RetryAttempts: 3, RetryInterval: 5 * time.Second, ConnectTimeout: 30 * time.Second}
		}
		cfg.ConnectionURL = a.Settings.RedisURL

		client, err := redis.Connect(context.Background(), cfg)
		if err != nil {
			a.Log.Error("redis unavailable, falling back to in-memory revocation", logger.Error(err))
			a.revoker = localauth.NewMemoryRevoker()
			return
		}
		a.revoker = localauth.NewRedisRevoker(client)
	})
	return a.revoker
}

// Email returns the selected mail transport.
func (a *App) Email(ctx context.Context) (email.EmailSender, error) {
	a.emailOnce.Do(func() {
		a.email, a.emailErr = a.buildEmail(ctx)
		if a.emailErr != nil {
			a.Log.Error("email selection failed",
				logger.Provider(string(a.Settings.EmailProvider)), logger.Error(a.emailErr))
		}
	})
	return a.email, a.emailErr
}

func (a *App) buildEmail(ctx context.Context) (email.EmailSender, error) {
	switch a.Settings.EmailProvider {
	case settings.EmailSES:
		return ses.New(ctx, ses.Config{
			Region:          a.Settings.AWSRegion,
			AccessKeyID:     a.Settings.AWSAccessKeyID,
			SecretAccessKey: a.Settings.AWSSecretAccessKey,
			SenderEmail:     a.Settings.EmailFrom,
			ReplyToEmail:    a.Settings.EmailReplyTo,
		})
	case settings.EmailPostmark:
		return postmark.New(postmark.Config{
			ServerToken:  a.Settings.PostmarkServerToken,
			AccountToken: a.Settings.PostmarkAccountToken,
			SenderEmail:  a.Settings.EmailFrom,
			ReplyToEmail: a.Settings.EmailReplyTo,
		})
	case settings.EmailSMTP:
		return smtp.New(smtp.Config{
			Host:         a.Settings.SMTPHost,
			Port:         a.Settings.SMTPPort,
			Username:     a.Settings.SMTPUsername,
			Password:     a.Settings.SMTPPassword,
			TLSMode:      smtp.TLSMode(a.Settings.SMTPTLSMode),
			SenderEmail:  a.Settings.EmailFrom,
			ReplyToEmail: a.Settings.EmailReplyTo,
		})
	case settings.EmailDev:
		return email.NewDevSender("tmp/emails"), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", a.Settings.EmailProvider)
	}
}
