package health

import (
	"context"
	"sync"
	"time"
)

// CheckState is the outcome of a single backend check.
type CheckState string

const (
	StateOK            CheckState = "ok"
	StateError         CheckState = "error"
	StateNotConfigured CheckState = "not_configured"
)

// Status is the aggregate health of the service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check probes one backend. Implementations report failure through the
// returned state, never through a panic; Guard enforces this for callers
// that cannot guarantee it.
type Check func(ctx context.Context) CheckState

// Guard wraps a check so that a panic inside it is recovered and reported
// as StateError instead of crashing the report.
func Guard(check Check) Check {
	return func(ctx context.Context) (state CheckState) {
		defer func() {
			if recover() != nil {
				state = StateError
			}
		}()
		if check == nil {
			return StateNotConfigured
		}
		return check(ctx)
	}
}

// Checks holds the three backend probes of the starter.
type Checks struct {
	Database Check
	Auth     Check
	Email    Check
}

// CheckResults is the per-backend section of a report.
type CheckResults struct {
	Database CheckState `json:"database"`
	Auth     CheckState `json:"auth"`
	Email    CheckState `json:"email"`
}

// Report is the HTTP-facing health snapshot.
type Report struct {
	Status    Status       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version"`
	Product   string       `json:"product"`
	Checks    CheckResults `json:"checks"`
	Uptime    int64        `json:"uptime"`
}

// Aggregate reduces individual check states to the overall status: any
// error dominates, then any not_configured, otherwise healthy.
func Aggregate(states ...CheckState) Status {
	status := StatusHealthy
	for _, s := range states {
		switch s {
		case StateError:
			return StatusUnhealthy
		case StateNotConfigured:
			status = StatusDegraded
		}
	}
	return status
}

// Run executes the three checks concurrently and assembles a report. The
// sub-checks are independent; their results are joined before aggregation.
func Run(ctx context.Context, checks Checks, version, product string, startedAt time.Time) Report {
	var (
		wg                    sync.WaitGroup
		database, auth, email CheckState
	)

	run := func(dst *CheckState, check Check) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*dst = Guard(check)(ctx)
		}()
	}
	run(&database, checks.Database)
	run(&auth, checks.Auth)
	run(&email, checks.Email)
	wg.Wait()

	return Report{
		Status:    Aggregate(database, auth, email),
		Timestamp: time.Now().UTC(),
		Version:   version,
		Product:   product,
		Checks: CheckResults{
			Database: database,
			Auth:     auth,
			Email:    email,
		},
		Uptime: int64(time.Since(startedAt).Seconds()),
	}
}
