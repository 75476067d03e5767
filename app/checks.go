package app

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/launchpad/core/auth"
	"github.com/dmitrymomot/launchpad/core/db"
	"github.com/dmitrymomot/launchpad/core/email"
	"github.com/dmitrymomot/launchpad/core/health"
	"github.com/dmitrymomot/launchpad/core/logger"
	"github.com/dmitrymomot/launchpad/core/metrics"
)

// remoteHealthchecker is implemented by providers that can probe their
// backend beyond having credentials present.
type remoteHealthchecker interface {
	Healthcheck(ctx context.Context) error
}

// HealthChecks builds the per-provider probes for the health endpoint.
func (a *App) HealthChecks() health.Checks {
	return health.Checks{
		Database: health.Guard(a.databaseCheck),
		Auth:     health.Guard(a.authCheck),
		Email:    health.Guard(a.emailCheck),
	}
}

func (a *App) databaseCheck(ctx context.Context) health.CheckState {
	querier, err := a.Database(ctx)
	if err != nil {
		if errors.Is(err, db.ErrNotConfigured) {
			return health.StateNotConfigured
		}
		return health.StateError
	}
	if err := querier.Healthcheck(ctx); err != nil {
		a.Log.Warn("database healthcheck failed", logger.Error(err))
		return health.StateError
	}
	return health.StateOK
}

func (a *App) authCheck(ctx context.Context) health.CheckState {
	provider, err := a.Auth()
	if err != nil {
		return health.StateError
	}

	checker, ok := provider.(remoteHealthchecker)
	if !ok {
		// Local tokens have no remote dependency; credentials present
		// means operational.
		if a.Settings.AuthSecret == "" {
			return health.StateNotConfigured
		}
		return health.StateOK
	}

	if err := checker.Healthcheck(ctx); err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			return health.StateNotConfigured
		}
		a.Log.Warn("auth healthcheck failed", logger.Error(err))
		return health.StateError
	}
	return health.StateOK
}

func (a *App) emailCheck(ctx context.Context) health.CheckState {
	if _, err := a.Email(ctx); err != nil {
		if errors.Is(err, email.ErrInvalidConfig) {
			return health.StateNotConfigured
		}
		return health.StateError
	}
	return health.StateOK
}

// MetricsCollector reports user counts from the selected database. An
// unconfigured or unreachable database yields a collection error, which
// the metrics endpoint degrades to an empty snapshot.
func (a *App) MetricsCollector() metrics.Collector {
	return metrics.CollectorFunc(func(ctx context.Context, period metrics.Period) (metrics.Snapshot, error) {
		querier, err := a.Database(ctx)
		if err != nil {
			return metrics.Snapshot{}, err
		}

		rows, err := querier.Select(ctx, "users")
		if err != nil {
			return metrics.Snapshot{}, err
		}

		snapshot := metrics.Snapshot{TotalUsers: int64(len(rows))}
		if cutoff, ok := periodCutoff(period); ok {
			for _, row := range rows {
				if createdAfter(row, cutoff) {
					snapshot.NewUsers++
				}
			}
		}
		return snapshot, nil
	})
}

// periodCutoff converts a reporting period into the earliest creation
// instant that still counts as new.
func periodCutoff(period metrics.Period) (time.Time, bool) {
	now := time.Now()
	switch period {
	case metrics.PeriodDaily:
		return now.AddDate(0, 0, -1), true
	case metrics.PeriodWeekly:
		return now.AddDate(0, 0, -7), true
	case metrics.PeriodMonthly:
		return now.AddDate(0, -1, 0), true
	}
	return time.Time{}, false
}

// createdAfter reads a row's created_at column, tolerating both native
// timestamps (neon) and RFC 3339 strings (supabase REST).
func createdAfter(row db.Row, cutoff time.Time) bool {
	switch v := row["created_at"].(type) {
	case time.Time:
		return v.After(cutoff)
	case string:
		ts, err := time.Parse(time.RFC3339, v)
		return err == nil && ts.After(cutoff)
	}
	return false
}

// Version is stamped at build time via -ldflags.
var Version = "dev"
