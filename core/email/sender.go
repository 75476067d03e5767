package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrFailedToSendEmail = errors.New("failed to send email")
	ErrInvalidConfig     = errors.New("invalid email configuration")
	ErrInvalidParams     = errors.New("invalid email parameters")
)

// EmailSender is implemented by every mail transport.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams describes one transactional message. BodyText is an
// optional plain-text alternative; Tag labels the message for tracking and
// development output filenames.
type SendEmailParams struct {
	SendTo   string
	Subject  string
	BodyHTML string
	BodyText string
	Tag      string
}

// Validate checks the minimum viable message: a valid recipient, a subject,
// and an HTML body.
func (p SendEmailParams) Validate() error {
	if !IsValidEmail(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}

// emailRegex is a simple regex for validating email addresses.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail checks if the provided string is a valid email address.
func IsValidEmail(addr string) bool {
	return emailRegex.MatchString(addr)
}
