package metrics

import (
	"context"
	"time"
)

// Period is the reporting window for a metrics snapshot.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod maps a query-string value onto a known period, defaulting to
// daily for empty or unknown input.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	default:
		return PeriodDaily
	}
}

// Snapshot holds the numbers reported for one period. Zero values are
// reported as zeros, not omitted: the aggregator treats a missing series
// differently from an empty one.
type Snapshot struct {
	TotalUsers  int64            `json:"totalUsers"`
	ActiveUsers int64            `json:"activeUsers"`
	NewUsers    int64            `json:"newUsers"`
	APICalls    int64            `json:"apiCalls"`
	PageViews   int64            `json:"pageViews"`
	Sessions    int64            `json:"sessions"`
	Custom      map[string]int64 `json:"custom,omitempty"`
}

// Collector produces a snapshot for the requested period.
type Collector interface {
	Collect(ctx context.Context, period Period) (Snapshot, error)
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func(ctx context.Context, period Period) (Snapshot, error)

func (f CollectorFunc) Collect(ctx context.Context, period Period) (Snapshot, error) {
	return f(ctx, period)
}

// Report is the HTTP-facing metrics payload.
type Report struct {
	Product   string    `json:"product"`
	Timestamp time.Time `json:"timestamp"`
	Period    Period    `json:"period"`
	Metrics   Snapshot  `json:"metrics"`
}
