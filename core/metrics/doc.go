// Package metrics serves the product-metrics JSON endpoint: a periodic
// snapshot of usage numbers aggregated by an upstream monitoring service.
//
// This is distinct from operational Prometheus metrics (request counters,
// latencies) which the server wires separately; this endpoint reports
// business-level numbers per reporting period (daily, weekly, monthly).
//
// A Collector supplies the numbers. The handler optionally requires a
// bearer token so only the aggregator can read them.
package metrics
