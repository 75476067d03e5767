package neon

import "time"

// Config holds Postgres connection and pool tuning. The defaults balance
// performance and resource usage for typical starter workloads; only the
// connection string is environment-specific.
type Config struct {
	ConnectionString  string        `env:"DATABASE_URL"`
	MaxOpenConns      int32         `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns      int32         `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	RetryAttempts     int           `env:"DB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval     time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"5s"`
	MigrationsPath    string        `env:"DB_MIGRATIONS_PATH"`
	MigrationsTable   string        `env:"DB_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
