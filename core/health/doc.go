// Package health aggregates point-in-time backend checks into a single
// status report served over HTTP.
//
// Each sub-check reports one of three states: ok, error, or
// not_configured. Aggregation is rule-based: any error forces the report
// unhealthy, otherwise any not_configured caps it at degraded, otherwise
// the report is healthy. The HTTP handler returns 200 for healthy and
// degraded reports and 503 for unhealthy ones, so load balancers only
// evict instances with hard failures.
//
// Checks must never take the process down: every check function runs
// behind a recover guard that downgrades a panic to the error state.
package health
