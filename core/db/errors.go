package db

import "errors"

var (
	// ErrNotConfigured is returned when the selected backend is missing its
	// required endpoint or connection string.
	ErrNotConfigured = errors.New("database provider is not configured")

	// ErrQueryFailed is returned when the backend rejected an operation or
	// was unreachable; the backend detail is joined.
	ErrQueryFailed = errors.New("database query failed")

	// ErrNotFound is returned when an operation expected a row and none
	// matched.
	ErrNotFound = errors.New("no matching rows")

	// ErrHealthcheckFailed is returned when the connectivity probe fails.
	ErrHealthcheckFailed = errors.New("database healthcheck failed")
)
