package local

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/launchpad/core/auth"
	"github.com/dmitrymomot/launchpad/core/email"
)

var (
	// ErrInvalidCredentials is returned for a wrong email or password.
	// The two cases share one error so responses cannot be used to probe
	// which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword is returned when a sign-up password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrInvalidResetToken is returned when a reset confirmation carries
	// an expired or tampered token.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

const minPasswordLength = 8

// resetAudience marks reset tokens so a session token can never be
// replayed as a reset confirmation or vice versa.
const resetAudience = "password-reset"

// Grant is an issued session: the signed token plus its normalized form.
type Grant struct {
	Token   string        `json:"token"`
	Session *auth.Session `json:"session"`
}

// Flow implements the self-hosted credential operations: sign-up with
// bcrypt hashing, password sign-in, token revocation on sign-out, and an
// email-based reset round trip. It issues the HS256 tokens that Provider
// later verifies.
type Flow struct {
	cfg     Config
	store   UserStore
	revoker Revoker
	sender  email.EmailSender
	appURL  string
	now     func() time.Time
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithFlowRevoker shares the revocation backend with the Provider so
// sign-out through either path takes effect everywhere.
func WithFlowRevoker(r Revoker) FlowOption {
	return func(f *Flow) {
		if r != nil {
			f.revoker = r
		}
	}
}

// WithResetEmail enables reset emails. appURL is the public base URL
// used to build the reset link.
func WithResetEmail(sender email.EmailSender, appURL string) FlowOption {
	return func(f *Flow) {
		f.sender = sender
		f.appURL = appURL
	}
}

// NewFlow creates a credential flow over the given account store.
func NewFlow(cfg Config, store UserStore, opts ...FlowOption) *Flow {
	f := &Flow{
		cfg:     cfg,
		store:   store,
		revoker: NoopRevoker{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) ready() error {
	if f.cfg.Secret == "" {
		return fmt.Errorf("%w: AUTH_SECRET is required", auth.ErrNotConfigured)
	}
	return nil
}

// SignUp registers an account and signs it in.
func (f *Flow) SignUp(ctx context.Context, emailAddr, password string) (Grant, error) {
	if err := f.ready(); err != nil {
		return Grant{}, err
	}
	if !email.IsValidEmail(emailAddr) {
		return Grant{}, fmt.Errorf("%w: invalid email address", email.ErrInvalidParams)
	}
	if len(password) < minPasswordLength {
		return Grant{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Grant{}, err
	}

	user := StoredUser{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hash),
	}
	if err := f.store.Create(ctx, user); err != nil {
		return Grant{}, err
	}
	return f.issue(user)
}

// SignIn verifies the password and issues a session token.
func (f *Flow) SignIn(ctx context.Context, emailAddr, password string) (Grant, error) {
	if err := f.ready(); err != nil {
		return Grant{}, err
	}

	user, err := f.store.ByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Grant{}, ErrInvalidCredentials
		}
		return Grant{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Grant{}, ErrInvalidCredentials
	}
	return f.issue(user)
}

// SignOut revokes the caller's token until its natural expiry.
func (f *Flow) SignOut(ctx context.Context) error {
	if err := f.ready(); err != nil {
		return err
	}
	token := auth.TokenFromContext(ctx)
	if token == "" {
		return nil
	}

	claims, ok := f.parse(token, "")
	if !ok || claims.ID == "" {
		return nil
	}
	return f.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// RequestReset issues a short-lived reset token and, when a sender is
// configured, mails the reset link. Unknown accounts report success so
// the endpoint cannot be used to enumerate users.
func (f *Flow) RequestReset(ctx context.Context, emailAddr string) error {
	if err := f.ready(); err != nil {
		return err
	}

	user, err := f.store.ByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	now := f.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    f.cfg.Issuer,
		Audience:  jwt.ClaimStrings{resetAudience},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(f.cfg.ResetTTL)),
	}).SignedString([]byte(f.cfg.Secret))
	if err != nil {
		return err
	}

	if f.sender == nil {
		return nil
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", f.appURL, token)
	return f.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   user.Email,
		Subject:  "Reset your password",
		BodyHTML: fmt.Sprintf(`<p>Follow <a href="%s">this link</a> to choose a new password. The link expires in %s.</p>`, html.EscapeString(link), f.cfg.ResetTTL),
		BodyText: fmt.Sprintf("Open %s to choose a new password. The link expires in %s.", link, f.cfg.ResetTTL),
		Tag:      "password-reset",
	})
}

// ConfirmReset validates a reset token and stores the new password hash.
func (f *Flow) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if err := f.ready(); err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	claims, ok := f.parse(token, resetAudience)
	if !ok || claims.Subject == "" {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := f.store.SetPassword(ctx, claims.Subject, string(hash)); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	// A used reset token is burned even though it may not have expired.
	return f.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// issue signs a session token for the user and returns it with its
// normalized session.
func (f *Flow) issue(user StoredUser) (Grant, error) {
	now := f.now()
	expires := now.Add(f.cfg.TokenTTL)

	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    f.cfg.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if user.Name != nil {
		claims.Name = *user.Name
	}
	if user.Image != nil {
		claims.Image = *user.Image
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(f.cfg.Secret))
	if err != nil {
		return Grant{}, err
	}

	return Grant{
		Token: token,
		Session: &auth.Session{
			User: auth.User{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
				Image: user.Image,
			},
			Expires: expires.UTC(),
		},
	}, nil
}

// parse verifies a token signed by this flow. audience is required for
// reset tokens and must be empty for session tokens.
func (f *Flow) parse(token, audience string) (*sessionClaims, bool) {
	opts := []jwt.ParserOption{jwt.WithIssuer(f.cfg.Issuer), jwt.WithExpirationRequired()}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(f.cfg.Secret), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, false
	}
	if audience == "" && len(claims.Audience) > 0 {
		return nil, false
	}
	return claims, true
}
