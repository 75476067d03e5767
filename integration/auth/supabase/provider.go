package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/launchpad/core/auth"
)

// Provider implements auth.Provider over the Supabase GoTrue API.
//
// Construction never fails: credentials are checked by each operation so
// that an unconfigured deployment degrades to explicit per-call errors
// instead of refusing to start.
type Provider struct {
	cfg  Config
	base string
	http *http.Client
}

var _ auth.Provider = (*Provider)(nil)

// New creates a GoTrue-backed provider. See Provider for the lazy
// configuration contract.
func New(cfg Config) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		cfg:  cfg,
		base: strings.TrimRight(cfg.ProjectURL, "/") + "/auth/v1",
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) ready() error {
	if p.cfg.ProjectURL == "" {
		return fmt.Errorf("%w: SUPABASE_URL is required", auth.ErrNotConfigured)
	}
	if p.cfg.AnonKey == "" {
		return fmt.Errorf("%w: SUPABASE_ANON_KEY is required", auth.ErrNotConfigured)
	}
	return nil
}

// gotrueUser is the raw GoTrue account shape. Display name and avatar
// live inside user_metadata and are absent for email-only signups.
type gotrueUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		Name      string `json:"name"`
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

// gotrueSession is the token grant shape returned by password sign-in
// and sign-up. ExpiresAt is epoch seconds and may be zero on older
// GoTrue versions that only send expires_in.
type gotrueSession struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	ExpiresAt   int64      `json:"expires_at"`
	User        gotrueUser `json:"user"`

	// raw keeps the undecoded body around for responses that carry a
	// bare user object instead of a token grant.
	raw json.RawMessage
}

// mapUser is the single point where a GoTrue account becomes the
// normalized form. A user without an id is unusable and maps to nil.
func mapUser(u gotrueUser) *auth.User {
	if u.ID == "" {
		return nil
	}
	name := u.Metadata.Name
	if name == "" {
		name = u.Metadata.FullName
	}
	return &auth.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  auth.Optional(name),
		Image: auth.Optional(u.Metadata.AvatarURL),
	}
}

// mapSession converts a token grant into the normalized session,
// resolving the expiry through the shared epoch rule.
func mapSession(s gotrueSession) *auth.Session {
	user := mapUser(s.User)
	if user == nil {
		return nil
	}
	expiresAt := s.ExpiresAt
	if expiresAt == 0 && s.ExpiresIn > 0 {
		expiresAt = time.Now().Unix() + s.ExpiresIn
	}
	return &auth.Session{User: *user, Expires: auth.ExpiryFromUnix(expiresAt)}
}

// Session resolves the caller's session from the bearer token carried in
// ctx. No token, an expired token, or an unmappable account all resolve
// to an absent session rather than an error.
func (p *Provider) Session(ctx context.Context) (*auth.Session, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	token := auth.TokenFromContext(ctx)
	if token == "" {
		return nil, nil
	}

	var u gotrueUser
	if err := p.do(ctx, http.MethodGet, "/user", token, nil, &u); err != nil {
		if status := statusOf(err); status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, nil
		}
		return nil, err
	}

	user := mapUser(u)
	if user == nil {
		return nil, nil
	}
	return &auth.Session{User: *user, Expires: auth.ExpiryFromUnix(tokenExpiry(token))}, nil
}

// User resolves just the account identity for the caller's token.
func (p *Provider) User(ctx context.Context) (*auth.User, error) {
	session, err := p.Session(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	return &session.User, nil
}

// SignIn performs the password grant. Failures come back inside the
// Result so handlers can render them without special-casing transport
// errors.
func (p *Provider) SignIn(ctx context.Context, email, password string) auth.Result {
	if err := p.ready(); err != nil {
		return auth.Result{Err: err}
	}

	var grant gotrueSession
	err := p.do(ctx, http.MethodPost, "/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &grant)
	if err != nil {
		return auth.Result{Err: err}
	}

	session := mapSession(grant)
	if session == nil {
		return auth.Result{Err: fmt.Errorf("%w: sign-in response carried no usable user", auth.ErrRemote)}
	}
	return auth.Result{User: &session.User, Session: session}
}

// SignUp registers a new account. With email confirmation enabled GoTrue
// returns a user but no token grant, which yields a Result with User set
// and Session absent.
func (p *Provider) SignUp(ctx context.Context, email, password string) auth.Result {
	if err := p.ready(); err != nil {
		return auth.Result{Err: err}
	}

	var grant gotrueSession
	err := p.do(ctx, http.MethodPost, "/signup", "",
		map[string]string{"email": email, "password": password}, &grant)
	if err != nil {
		return auth.Result{Err: err}
	}

	if grant.AccessToken == "" {
		// Confirmation-pending signup: the user payload is the whole body.
		var u gotrueUser
		_ = json.Unmarshal(grant.raw, &u)
		if user := mapUser(u); user != nil {
			return auth.Result{User: user}
		}
		return auth.Result{Err: fmt.Errorf("%w: sign-up response carried no usable user", auth.ErrRemote)}
	}

	session := mapSession(grant)
	if session == nil {
		return auth.Result{Err: fmt.Errorf("%w: sign-up response carried no usable user", auth.ErrRemote)}
	}
	return auth.Result{User: &session.User, Session: session}
}

// SignOut revokes the caller's token. Signing out without a session is a
// no-op.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.ready(); err != nil {
		return err
	}
	token := auth.TokenFromContext(ctx)
	if token == "" {
		return nil
	}
	return p.do(ctx, http.MethodPost, "/logout", token, struct{}{}, nil)
}

// ResetPassword asks GoTrue to send a recovery email. The response is
// intentionally identical whether or not the account exists.
func (p *Provider) ResetPassword(ctx context.Context, email string) error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.do(ctx, http.MethodPost, "/recover", "", map[string]string{"email": email}, nil)
}

// Healthcheck probes the GoTrue health endpoint.
func (p *Provider) Healthcheck(ctx context.Context) error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

// tokenExpiry reads the exp claim from the access token without verifying
// the signature; GoTrue already authenticated the token server-side.
// Returns 0 when the claim is missing or unreadable.
func tokenExpiry(token string) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Unix()
}

// do performs one GoTrue call, decoding the response into out when given.
// Error payloads vary across GoTrue versions, so decoding tolerates both
// {error_description} and {msg}/{message} shapes.
func (p *Provider) do(ctx context.Context, method, path, token string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: %v", auth.ErrRemote, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrRemote, err)
	}
	req.Header.Set("apikey", p.cfg.AnonKey)
	if token == "" {
		token = p.cfg.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrRemote, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrRemote, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return remoteError(resp.StatusCode, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: malformed response: %v", auth.ErrRemote, err)
		}
		if grant, ok := out.(*gotrueSession); ok {
			grant.raw = body
		}
	}
	return nil
}

// statusError carries the HTTP status alongside the normalized error so
// Session can distinguish "token rejected" from backend failures.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}

func remoteError(status int, body []byte) error {
	var payload struct {
		Message     string `json:"message"`
		Msg         string `json:"msg"`
		Description string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &payload)

	message := payload.Description
	if message == "" {
		message = payload.Msg
	}
	if message == "" {
		message = payload.Message
	}
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", status)
	}
	return &statusError{status: status, err: fmt.Errorf("%w: %s", auth.ErrRemote, message)}
}
