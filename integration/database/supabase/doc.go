// Package supabase provides the hosted REST-over-HTTP persistence backend.
//
// The client speaks PostgREST against a Supabase project's /rest/v1
// surface and implements the normalized core/db.Querier capability, so
// application code never sees PostgREST's native row or error shapes.
//
// Configuration requires the project URL and the anon key; the
// service-role key, when present, is preferred for server-side access:
//
//	type Config struct {
//		ProjectURL string        `env:"SUPABASE_URL"`
//		AnonKey    string        `env:"SUPABASE_ANON_KEY"`
//		ServiceKey string        `env:"SUPABASE_SERVICE_ROLE_KEY"`
//		Timeout    time.Duration `env:"SUPABASE_HTTP_TIMEOUT" envDefault:"10s"`
//	}
//
// Healthcheck issues a single HEAD request to the REST root and is cheap
// enough for per-request health reports.
package supabase
