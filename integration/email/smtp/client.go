// Package smtp implements the email.EmailSender interface over plain
// SMTP with STARTTLS, implicit TLS, or unencrypted transport.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/launchpad/core/email"
)

type Client struct {
	config Config
	auth   smtp.Auth
}

var _ email.EmailSender = (*Client)(nil)

// New creates an SMTP-backed email sender.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP_HOST is required", email.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: SMTP_PORT must be between 1 and 65535", email.ErrInvalidConfig)
	}
	switch cfg.TLSMode {
	case TLSModeStartTLS, TLSModeImplicit, TLSModePlain:
	default:
		return nil, fmt.Errorf("%w: SMTP_TLS_MODE must be starttls, tls, or plain", email.ErrInvalidConfig)
	}
	if !email.IsValidEmail(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: EMAIL_FROM must be a valid email address", email.ErrInvalidConfig)
	}
	if cfg.ReplyToEmail != "" && !email.IsValidEmail(cfg.ReplyToEmail) {
		return nil, fmt.Errorf("%w: EMAIL_REPLY_TO must be a valid email address", email.ErrInvalidConfig)
	}

	client := &Client{config: cfg}
	if cfg.Username != "" {
		client.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return client, nil
}

// SendEmail implements email.EmailSender. The whole SMTP transaction runs
// under the caller's context deadline via the dial timeout.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	if err := params.Validate(); err != nil {
		return err
	}

	message, err := c.buildMessage(params)
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	defer func() { _ = conn.Close() }()

	if err := c.transact(conn, params.SendTo, message); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	return nil
}

// dial opens an SMTP client in the configured TLS mode.
func (c *Client) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	if c.config.TLSMode == TLSModeImplicit {
		raw = tls.Client(raw, &tls.Config{ServerName: c.config.Host})
	}

	conn, err := smtp.NewClient(raw, c.config.Host)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	if c.config.TLSMode == TLSModeStartTLS {
		if err := conn.StartTLS(&tls.Config{ServerName: c.config.Host}); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}
	return conn, nil
}

// transact runs MAIL FROM / RCPT TO / DATA / QUIT.
func (c *Client) transact(conn *smtp.Client, recipient string, message []byte) error {
	if c.auth != nil {
		if err := conn.Auth(c.auth); err != nil {
			return fmt.Errorf("authentication: %w", err)
		}
	}
	if err := conn.Mail(c.config.SenderEmail); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := conn.Rcpt(recipient); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	writer, err := conn.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(message); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return conn.Quit()
}

// buildMessage renders a multipart/alternative MIME message when a text
// body is present, or plain HTML otherwise.
func (c *Client) buildMessage(params email.SendEmailParams) ([]byte, error) {
	var sb strings.Builder
	write := func(key, value string) {
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\r\n")
	}

	write("From", c.config.SenderEmail)
	write("To", params.SendTo)
	if c.config.ReplyToEmail != "" {
		write("Reply-To", c.config.ReplyToEmail)
	}
	write("Subject", params.Subject)
	write("Date", time.Now().Format(time.RFC1123Z))
	write("Message-ID", fmt.Sprintf("<%d@%s>", time.Now().UnixNano(), c.config.Host))
	write("MIME-Version", "1.0")

	if params.BodyText == "" {
		write("Content-Type", `text/html; charset="UTF-8"`)
		sb.WriteString("\r\n")
		sb.WriteString(params.BodyHTML)
		return []byte(sb.String()), nil
	}

	var body strings.Builder
	mw := multipart.NewWriter(&body)
	write("Content-Type", `multipart/alternative; boundary="`+mw.Boundary()+`"`)
	sb.WriteString("\r\n")

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{`text/plain; charset="UTF-8"`, params.BodyText},
		{`text/html; charset="UTF-8"`, params.BodyHTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	sb.WriteString(body.String())
	return []byte(sb.String()), nil
}
