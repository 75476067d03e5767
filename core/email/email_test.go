package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchpad/core/email"
)

func TestSendEmailParamsValidate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Welcome",
		BodyHTML: "<p>Hello</p>",
	}

	t.Run("accepts a complete message", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects invalid recipient", func(t *testing.T) {
		t.Parallel()

		p := valid
		p.SendTo = "not-an-address"
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		t.Parallel()

		p := valid
		p.Subject = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("rejects empty HTML body", func(t *testing.T) {
		t.Parallel()

		p := valid
		p.BodyHTML = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	t.Run("writes HTML and metadata files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Password Reset",
			BodyHTML: "<p>Reset link</p>",
			BodyText: "Reset link",
			Tag:      "password-reset",
		})
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var html, meta string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				html = e.Name()
			case ".json":
				meta = e.Name()
			}
		}
		require.NotEmpty(t, html)
		require.NotEmpty(t, meta)
		assert.True(t, strings.HasSuffix(strings.TrimSuffix(html, ".html"), "password-reset"))

		body, err := os.ReadFile(filepath.Join(dir, html))
		require.NoError(t, err)
		assert.Equal(t, "<p>Reset link</p>", string(body))

		raw, err := os.ReadFile(filepath.Join(dir, meta))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"send_to": "user@example.com"`)
	})

	t.Run("rejects invalid params before writing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(context.Background(), email.SendEmailParams{})
		assert.ErrorIs(t, err, email.ErrInvalidParams)

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	})
}
