// Package email defines the mail-sending contract shared by every email
// backend, plus a development sender that writes messages to disk instead
// of a remote service.
//
// Concrete transports live under integration/email; the active one is
// selected through the app layer the same way database and auth backends
// are. Handlers depend only on EmailSender:
//
//	sender, err := application.Email(ctx)
//	if err != nil { ... }
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Reset your password",
//		BodyHTML: body,
//	})
package email
