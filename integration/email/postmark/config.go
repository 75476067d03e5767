package postmark

// Config holds Postmark API credentials and sender identity. Tokens are
// optional so development environments can select another transport, but
// New refuses to build a client without them.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail  string `env:"EMAIL_FROM"`
	ReplyToEmail string `env:"EMAIL_REPLY_TO"`
}
