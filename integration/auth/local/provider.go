package local

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/launchpad/core/auth"
)

// Provider implements auth.Provider for self-issued HS256 session tokens.
//
// Only session resolution goes through the provider interface. Credential
// operations are deliberately routed through the Flow endpoints instead,
// so the interface methods return explanatory errors rather than
// half-working shortcuts.
type Provider struct {
	cfg     Config
	revoker Revoker
}

var _ auth.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithRevoker replaces the default NoopRevoker.
func WithRevoker(r Revoker) Option {
	return func(p *Provider) {
		if r != nil {
			p.revoker = r
		}
	}
}

// New creates a local token provider. Construction never fails; a missing
// secret surfaces from the first operation.
func New(cfg Config, opts ...Option) *Provider {
	p := &Provider{cfg: cfg, revoker: NoopRevoker{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) ready() error {
	if p.cfg.Secret == "" {
		return fmt.Errorf("%w: AUTH_SECRET is required", auth.ErrNotConfigured)
	}
	return nil
}

// sessionClaims is the signed token payload. Identity attributes ride in
// the token so session resolution needs no store lookup.
type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
	jwt.RegisteredClaims
}

// parseToken verifies signature, algorithm, and expiry. Any verification
// failure means "no session", not an error.
func (p *Provider) parseToken(token string) (*sessionClaims, bool) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(p.cfg.Secret), nil
	}, jwt.WithIssuer(p.cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, false
	}
	// Single-purpose tokens (password reset) carry an audience and are
	// never valid as sessions.
	if len(claims.Audience) > 0 {
		return nil, false
	}
	return claims, true
}

// Session resolves the caller's session from the bearer token in ctx.
// Invalid, expired, revoked, or subject-less tokens all resolve to an
// absent session.
func (p *Provider) Session(ctx context.Context) (*auth.Session, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	token := auth.TokenFromContext(ctx)
	if token == "" {
		return nil, nil
	}

	claims, ok := p.parseToken(token)
	if !ok || claims.Subject == "" {
		return nil, nil
	}

	revoked, err := p.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation lookup: %v", auth.ErrRemote, err)
	}
	if revoked {
		return nil, nil
	}

	var expiry int64
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Unix()
	}
	return &auth.Session{
		User: auth.User{
			ID:    claims.Subject,
			Email: claims.Email,
			Name:  auth.Optional(claims.Name),
			Image: auth.Optional(claims.Image),
		},
		Expires: auth.ExpiryFromUnix(expiry),
	}, nil
}

// User resolves just the account identity for the caller's token.
func (p *Provider) User(ctx context.Context) (*auth.User, error) {
	session, err := p.Session(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	return &session.User, nil
}

// SignIn is not available through the provider interface; use the Flow
// sign-in endpoint.
func (p *Provider) SignIn(ctx context.Context, _, _ string) auth.Result {
	if err := p.ready(); err != nil {
		return auth.Result{Err: err}
	}
	return auth.Result{Err: fmt.Errorf("%w: sign in through the credential flow endpoint", auth.ErrUnsupported)}
}

// SignUp is not available through the provider interface; use the Flow
// sign-up endpoint.
func (p *Provider) SignUp(ctx context.Context, _, _ string) auth.Result {
	if err := p.ready(); err != nil {
		return auth.Result{Err: err}
	}
	return auth.Result{Err: fmt.Errorf("%w: sign up through the credential flow endpoint", auth.ErrUnsupported)}
}

// SignOut is not available through the provider interface; use the Flow
// sign-out endpoint, which revokes the token until its natural expiry.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.ready(); err != nil {
		return err
	}
	return fmt.Errorf("%w: sign out through the credential flow endpoint", auth.ErrUnsupported)
}

// ResetPassword is not available through the provider interface; use the
// Flow reset endpoint.
func (p *Provider) ResetPassword(ctx context.Context, _ string) error {
	if err := p.ready(); err != nil {
		return err
	}
	return fmt.Errorf("%w: reset passwords through the credential flow endpoint", auth.ErrUnsupported)
}
