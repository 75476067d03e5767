// Package logger provides structured logging built on log/slog with
// environment-driven configuration and nil-safe attribute helpers.
//
// The helpers use the empty Attr pattern: passing a nil error or empty
// identifier yields an attribute slog silently drops, so call sites never
// need explicit nil checks:
//
//	log := logger.New()
//	log.Error("sign-in failed", logger.Error(err), logger.Component("auth"))
package logger
