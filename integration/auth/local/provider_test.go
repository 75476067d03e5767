package local_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchpad/core/auth"
	"github.com/dmitrymomot/launchpad/integration/auth/local"
)

const testSecret = "test-secret-key-that-is-long-enough"

func testConfig() local.Config {
	return local.Config{
		Secret:   testSecret,
		TokenTTL: 24 * time.Hour,
		ResetTTL: time.Hour,
		Issuer:   "launchpad",
	}
}

func issueTestToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "launchpad",
		ID:        "jti-1",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestProvider_NotConfigured(t *testing.T) {
	t.Parallel()

	p := local.New(local.Config{})
	ctx := auth.WithToken(context.Background(), "anything")

	_, err := p.Session(ctx)
	assert.ErrorIs(t, err, auth.ErrNotConfigured)

	result := p.SignIn(ctx, "a@b.co", "pw")
	assert.ErrorIs(t, result.Err, auth.ErrNotConfigured)

	assert.ErrorIs(t, p.SignOut(ctx), auth.ErrNotConfigured)
	assert.ErrorIs(t, p.ResetPassword(ctx, "a@b.co"), auth.ErrNotConfigured)
}

func TestProvider_Session(t *testing.T) {
	t.Parallel()

	t.Run("valid token resolves the session", func(t *testing.T) {
		t.Parallel()

		claims := validClaims()
		ctx := auth.WithToken(context.Background(), issueTestToken(t, claims))

		session, err := local.New(testConfig()).Session(ctx)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "user-1", session.User.ID)
		assert.Equal(t, claims.ExpiresAt.Time.Unix(), session.Expires.Unix())
	})

	t.Run("no token resolves to absent session", func(t *testing.T) {
		t.Parallel()

		session, err := local.New(testConfig()).Session(context.Background())
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("expired token resolves to absent session", func(t *testing.T) {
		t.Parallel()

		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		ctx := auth.WithToken(context.Background(), issueTestToken(t, claims))

		session, err := local.New(testConfig()).Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("token with wrong secret resolves to absent session", func(t *testing.T) {
		t.Parallel()

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("other-secret"))
		require.NoError(t, err)
		ctx := auth.WithToken(context.Background(), token)

		session, err := local.New(testConfig()).Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("token without subject resolves to absent session", func(t *testing.T) {
		t.Parallel()

		claims := validClaims()
		claims.Subject = ""
		ctx := auth.WithToken(context.Background(), issueTestToken(t, claims))

		session, err := local.New(testConfig()).Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("reset token is not a session", func(t *testing.T) {
		t.Parallel()

		claims := validClaims()
		claims.Audience = jwt.ClaimStrings{"password-reset"}
		ctx := auth.WithToken(context.Background(), issueTestToken(t, claims))

		session, err := local.New(testConfig()).Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("revoked token resolves to absent session", func(t *testing.T) {
		t.Parallel()

		revoker := local.NewMemoryRevoker()
		p := local.New(testConfig(), local.WithRevoker(revoker))

		claims := validClaims()
		ctx := auth.WithToken(context.Background(), issueTestToken(t, claims))

		session, err := p.Session(ctx)
		require.NoError(t, err)
		require.NotNil(t, session)

		require.NoError(t, revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time))

		session, err = p.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}

func TestProvider_StubOperations(t *testing.T) {
	t.Parallel()

	p := local.New(testConfig())
	ctx := context.Background()

	result := p.SignIn(ctx, "a@b.co", "pw")
	assert.ErrorIs(t, result.Err, auth.ErrUnsupported)
	assert.Nil(t, result.User)
	assert.Nil(t, result.Session)

	// Repeated calls keep returning the same explanatory error.
	again := p.SignIn(ctx, "a@b.co", "pw")
	assert.ErrorIs(t, again.Err, auth.ErrUnsupported)

	result = p.SignUp(ctx, "a@b.co", "pw")
	assert.ErrorIs(t, result.Err, auth.ErrUnsupported)

	assert.ErrorIs(t, p.SignOut(ctx), auth.ErrUnsupported)
	assert.ErrorIs(t, p.ResetPassword(ctx, "a@b.co"), auth.ErrUnsupported)
}

func TestProvider_SignOutBypassesRevocation(t *testing.T) {
	t.Parallel()

	revoker := local.NewMemoryRevoker()
	p := local.New(testConfig(), local.WithRevoker(revoker))

	claims := validClaims()
	ctx := auth.WithToken(context.Background(), issueTestToken(t, claims))

	// Even with a valid session token, sign-out points at the flow
	// endpoint and must not touch the revocation backend.
	assert.ErrorIs(t, p.SignOut(ctx), auth.ErrUnsupported)

	revoked, err := revoker.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}
