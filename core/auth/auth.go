package auth

import (
	"context"
	"time"
)

// DefaultSessionTTL is assumed when a backend reports a session without an
// expiry of its own.
const DefaultSessionTTL = time.Hour

// User is the normalized account identity. ID is an opaque stable
// identifier and is never empty on a returned user; Email falls back to ""
// when the backend omits it. Name and Image are nil when the backend has no
// value rather than carrying backend-specific null conventions.
type User struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// Session pairs a resolved user with an absolute expiry instant.
// Expires marshals as RFC 3339 and is always in the future at creation.
type Session struct {
	User    User      `json:"user"`
	Expires time.Time `json:"expires"`
}

// Result is the outcome of a credential operation. Err present means the
// operation did not succeed, even if the backend still returned a partial
// user or session; callers check Err first.
type Result struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Err     error    `json:"-"`
}

// Provider is the capability interface implemented by every auth backend.
// Session and User return (nil, nil) when no session or user exists; an
// error is reserved for configuration or backend failures.
type Provider interface {
	Session(ctx context.Context) (*Session, error)
	User(ctx context.Context) (*User, error)
	SignIn(ctx context.Context, email, password string) Result
	SignUp(ctx context.Context, email, password string) Result
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
}

// ExpiryFromUnix converts a backend-reported epoch-seconds expiry into the
// normalized absolute instant. A missing expiry (zero or negative) yields
// DefaultSessionTTL from now. Every backend applies this one rule so the
// two representations cannot drift apart.
func ExpiryFromUnix(epoch int64) time.Time {
	if epoch > 0 {
		return time.Unix(epoch, 0).UTC()
	}
	return time.Now().Add(DefaultSessionTTL).UTC()
}

// Optional converts a possibly-empty backend string into the normalized
// nullable form: "" becomes nil.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
