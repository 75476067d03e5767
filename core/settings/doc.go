// Package settings resolves the starter's process-wide configuration:
// which backend provider serves persistence, authentication, and mail,
// plus the credentials each backend needs.
//
// Settings are read from the environment exactly once (via core/config)
// and are immutable for the process lifetime. Provider choices are closed
// enums; selection code switches over them exhaustively so adding a new
// backend is a compile-visible change.
//
// Resolution is forgiving outside production: an invalid environment is
// logged and replaced with defaults so local development can still boot in
// a degraded state. In production the same failure aborts startup.
//
// A required credential missing for the selected backend is not a
// resolution error: it surfaces as a configuration error on first use of
// that backend, matching the lazy construction of provider clients.
package settings
