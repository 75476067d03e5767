package smtp

// TLSMode selects how the SMTP connection is secured.
type TLSMode string

const (
	TLSModeStartTLS TLSMode = "starttls"
	TLSModeImplicit TLSMode = "tls"
	TLSModePlain    TLSMode = "plain"
)

// Config holds SMTP server settings. Plain mode exists for local
// development relays like Mailpit and should never reach production.
type Config struct {
	Host         string  `env:"SMTP_HOST"`
	Port         int     `env:"SMTP_PORT" envDefault:"587"`
	Username     string  `env:"SMTP_USERNAME"`
	Password     string  `env:"SMTP_PASSWORD"`
	TLSMode      TLSMode `env:"SMTP_TLS_MODE" envDefault:"starttls"`
	SenderEmail  string  `env:"EMAIL_FROM"`
	ReplyToEmail string  `env:"EMAIL_REPLY_TO"`
}
