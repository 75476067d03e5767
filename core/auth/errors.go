package auth

import "errors"

var (
	// ErrNotConfigured is returned when the selected backend is missing a
	// required credential or endpoint. Fatal to the attempted operation and
	// never retried; fixing it requires redeploying with correct settings.
	ErrNotConfigured = errors.New("auth provider is not configured")

	// ErrRemote is returned when the backend rejected a call or was
	// unreachable. Surfaced as data (Result.Err or a returned error value)
	// so UI layers can render the message; never raised as a panic.
	ErrRemote = errors.New("auth backend request failed")

	// ErrUnsupported is returned by operations the active backend
	// deliberately does not implement through this path. Callers treat it
	// exactly like ErrRemote and need no special case.
	ErrUnsupported = errors.New("operation is not supported by the active auth provider")
)
