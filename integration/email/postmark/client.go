// Package postmark implements the email.EmailSender interface over
// Postmark's transactional API with open and HTML link tracking enabled.
package postmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/launchpad/core/email"
)

type Client struct {
	client *postmark.Client
	config Config
}

var _ email.EmailSender = (*Client)(nil)

// New creates a Postmark-backed email sender. Both tokens and a valid
// sender address are required; missing values are a configuration error
// rather than a silent failure at send time.
func New(cfg Config) (*Client, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", email.ErrInvalidConfig)
	}
	if cfg.AccountToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_ACCOUNT_TOKEN is required", email.ErrInvalidConfig)
	}
	if !email.IsValidEmail(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: EMAIL_FROM must be a valid email address", email.ErrInvalidConfig)
	}
	if cfg.ReplyToEmail != "" && !email.IsValidEmail(cfg.ReplyToEmail) {
		return nil, fmt.Errorf("%w: EMAIL_REPLY_TO must be a valid email address", email.ErrInvalidConfig)
	}

	return &Client{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		config: cfg,
	}, nil
}

// MustNew creates a Postmark client that panics on invalid config.
func MustNew(cfg Config) *Client {
	client, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// SendEmail implements email.EmailSender. Tracking covers opens and HTML
// link clicks only; plain-text links stay untouched.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:       c.config.SenderEmail,
		ReplyTo:    c.config.ReplyToEmail,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TextBody:   params.BodyText,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			email.ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
