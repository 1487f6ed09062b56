// Package mailer sends the password reset mail over SMTP.
package mailer

import (
	"fmt"

	"github.com/sqlizer/sqlizer/internal/config"
	"gopkg.in/gomail.v2"
)

const resetBody = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Password Reset</title>
</head>
<body>
  <div style="max-width: 600px; margin: 0 auto;">
    <h2>Password Reset</h2>
    <p>Hello,</p>
    <p>You have requested to reset your password. Please click the link below to reset it:</p>
    <p><a href="%s?token=%s">Reset Password</a></p>
    <p>If you didn't request a password reset, please ignore this email.</p>
    <p>Thank you,</p>
    <p>The SQLizer Team</p>
  </div>
</body>
</html>`

// Mailer delivers outbound mail.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	frontURL string
}

// New builds a mailer from the SMTP configuration.
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:     cfg.SMTPUser,
		frontURL: cfg.FrontURL,
	}
}

// SendResetPasswordEmail mails the reset link carrying the one-hour token.
func (m *Mailer) SendResetPasswordEmail(email, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/html", fmt.Sprintf(resetBody, m.frontURL, token))

	return m.dialer.DialAndSend(msg)
}
