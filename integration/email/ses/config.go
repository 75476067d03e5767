package ses

// Config holds AWS SES credentials and sender identity. When AccessKeyID
// and SecretAccessKey are empty, the default AWS credential chain is used
// so IAM roles keep working without explicit keys.
type Config struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SenderEmail     string `env:"EMAIL_FROM"`
	ReplyToEmail    string `env:"EMAIL_REPLY_TO"`
}
