package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// EmailConfig holds SMTP submission parameters for the email sender.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	UseSSL   bool
}

// EmailSender delivers alerts over SMTP.
type EmailSender struct {
	cfg EmailConfig
}

// NewEmailSender creates an EmailSender for the given SMTP account.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Send submits one plain-text message. A fresh SMTP session is established
// per alert; alerts are rare enough that connection reuse buys nothing.
func (e *EmailSender) Send(ctx context.Context, subject, body string) error {
	opts := []mail.Option{
		mail.WithPort(e.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.cfg.Username),
		mail.WithPassword(e.cfg.Password),
		mail.WithTimeout(10 * time.Second),
	}
	if e.cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(e.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("email: client: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return fmt.Errorf("email: from %q: %w", e.cfg.From, err)
	}
	if err := msg.To(e.cfg.To...); err != nil {
		return fmt.Errorf("email: to %v: %w", e.cfg.To, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

// Name returns the sender identifier.
func (e *EmailSender) Name() string {
	return "email"
}
