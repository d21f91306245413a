// Package mailer sends transactional email.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"scholarly/backend/config"

	"github.com/yuin/goldmark"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *log.Logger
}

func NewSMTPMailer(cfg *config.Config, logger *log.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.EmailFrom,
		logger: logger,
	}
}

// Send delivers one HTML message. gomail has no context support, so ctx is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Printf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Printf("Email sent successfully to %s", to)
	return nil
}

const passwordResetTemplate = `# Reset password

Hi %s,

Use this code to reset your password:

**%s**

If you did not ask for a password reset you can ignore this email.
`

// RenderPasswordReset builds the HTML body of the reset-code email.
func RenderPasswordReset(name, code string) (string, error) {
	var buf bytes.Buffer
	source := fmt.Sprintf(passwordResetTemplate, name, code)
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render password reset email: %w", err)
	}
	return buf.String(), nil
}
