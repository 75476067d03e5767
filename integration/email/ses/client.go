// Package ses implements the email.EmailSender interface over the AWS
// SES v2 API.
package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/dmitrymomot/launchpad/core/email"
)

// SESClient is the subset of the sesv2 API the sender uses. Narrowed to
// an interface so tests can substitute a mock.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type Client struct {
	client SESClient
	config Config
}

var _ email.EmailSender = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithSESClient sets a pre-configured SES client, primarily for tests.
func WithSESClient(c SESClient) Option {
	return func(client *Client) {
		client.client = c
	}
}

// New creates an SES-backed email sender. Explicit keys take precedence;
// with no keys the default credential chain resolves IAM roles or shared
// config.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: AWS_REGION is required", email.ErrInvalidConfig)
	}
	if !email.IsValidEmail(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: EMAIL_FROM must be a valid email address", email.ErrInvalidConfig)
	}
	if cfg.ReplyToEmail != "" && !email.IsValidEmail(cfg.ReplyToEmail) {
		return nil, fmt.Errorf("%w: EMAIL_REPLY_TO must be a valid email address", email.ErrInvalidConfig)
	}

	client := &Client{config: cfg}
	for _, opt := range opts {
		opt(client)
	}
	if client.client != nil {
		return client, nil
	}

	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, errors.Join(email.ErrInvalidConfig, err)
	}

	client.client = sesv2.NewFromConfig(awsConfig)
	return client, nil
}

// SendEmail implements email.EmailSender.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	body := &types.Body{
		Html: &types.Content{Data: aws.String(params.BodyHTML)},
	}
	if params.BodyText != "" {
		body.Text = &types.Content{Data: aws.String(params.BodyText)}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.config.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.SendTo},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(params.Subject)},
				Body:    body,
			},
		},
	}
	if c.config.ReplyToEmail != "" {
		input.ReplyToAddresses = []string{c.config.ReplyToEmail}
	}

	if _, err := c.client.SendEmail(ctx, input); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	return nil
}
