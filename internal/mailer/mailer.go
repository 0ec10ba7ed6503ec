// Package mailer отправляет транзакционные письма клиентам через SMTP.
package mailer

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/Kisangi1/The-SOL-NEW/internal/config"
)

// Sender delivers a rendered notification to a recipient. The worker
// depends on this interface so tests can substitute a fake transport.
type Sender interface {
	Send(templateName, recipient, payload string) error
}

// SMTPMailer renders outbox notifications into HTML emails and sends them
// through a gomail dialer.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zerolog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *SMTPMailer) Send(templateName, recipient, payload string) error {
	email, err := render(templateName, payload)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", templateName, recipient, err)
	}

	m.logger.Debug().
		Str("template", templateName).
		Str("recipient", recipient).
		Msg("Письмо отправлено")
	return nil
}
