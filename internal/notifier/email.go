// Package notifier holds secondary notification channels. The primary
// channel is the Telegram client; email is an optional mirror for the daily
// agenda digest.
package notifier

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/dromero/barberbot/internal/config"
)

// DigestMailer delivers the daily agenda to the owner's email address.
type DigestMailer interface {
	SendDigest(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.EmailConfig) DigestMailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) SendDigest(_ context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}
	return nil
}
