// Package neon provides the direct-Postgres persistence backend for
// serverless Postgres providers reachable by connection string.
//
// The package wraps the pgx driver with application-level retry logic,
// connection pool tuning, and integrated goose migrations. Connection
// establishment uses linearly increasing backoff to ride out transient
// network issues when instances restart together.
//
// All configuration is handled through the Config struct with environment
// variable mapping:
//
//	type Config struct {
//		ConnectionString  string        `env:"DATABASE_URL"`
//		MaxOpenConns      int32         `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"DB_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"DB_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"5s"`
//		MigrationsPath    string        `env:"DB_MIGRATIONS_PATH"`
//	}
//
// NewQuerier adapts the pool to the normalized core/db.Querier capability
// so the rest of the application stays provider-agnostic:
//
//	pool, err := neon.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	querier := neon.NewQuerier(pool)
//	rows, err := querier.Select(ctx, "users", db.Eq("email", email))
package neon
