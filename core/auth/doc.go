// Package auth defines the provider-independent authentication contract:
// the normalized User, Session, and Result shapes, the Provider capability
// interface every concrete backend implements, and the error taxonomy the
// backends surface.
//
// Application code obtains a Provider through the app selector and only
// ever sees these normalized types; backend-native response shapes never
// cross this boundary. Call sites are polymorphic over the capability set
// and must not branch on which concrete backend is active.
//
// Operations that can partially succeed (SignIn, SignUp) return a Result
// whose Err field must be checked before User or Session: a backend may
// populate a user alongside an error, and error-first is the contract.
//
// The caller's bearer token travels via the request context (WithToken /
// TokenFromContext) so both stateless backends can resolve the current
// session without provider-specific plumbing in handlers.
package auth
