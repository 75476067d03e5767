package postmark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchpad/core/email"
	"github.com/dmitrymomot/launchpad/integration/email/postmark"
)

func TestNew(t *testing.T) {
	t.Parallel()

	valid := postmark.Config{
		ServerToken:  "server-token",
		AccountToken: "account-token",
		SenderEmail:  "no-reply@example.com",
		ReplyToEmail: "support@example.com",
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		client, err := postmark.New(valid)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("missing server token", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.ServerToken = ""
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("missing account token", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.AccountToken = ""
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("invalid sender email", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.SenderEmail = "not-an-email"
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("reply-to is optional", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.ReplyToEmail = ""
		_, err := postmark.New(cfg)
		assert.NoError(t, err)
	})

	t.Run("invalid reply-to", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.ReplyToEmail = "nope"
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestMustNew_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		postmark.MustNew(postmark.Config{})
	})
}
