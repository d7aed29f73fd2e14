package notification

import (
	"context"
	"fmt"

	"support-desk/internal/config"

	"gopkg.in/gomail.v2"
)

// Email is one outgoing HTML message.
type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers e-mail over SMTP. Port 465 uses implicit TLS.
type SMTPMailer struct {
	dialer dialer
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	return nil
}
