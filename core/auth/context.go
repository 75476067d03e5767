package auth

import "context"

// tokenContextKey is an unexported key type to avoid context key collisions.
type tokenContextKey struct{}

// WithToken returns a new context carrying the caller's bearer token.
// An empty token returns the original context unchanged.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext extracts a bearer token previously stored with WithToken.
// Returns "" when no token is present.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}
