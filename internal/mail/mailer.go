// Package mail sends documents to clients over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Config carries the SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// Enabled reports whether the mailer has enough configuration to send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Mailer sends e-mails with optional PDF attachments.
type Mailer struct {
	cfg  Config
	send func(addr string, auth smtp.Auth, e *email.Email) error
}

func New(cfg Config) *Mailer {
	return &Mailer{
		cfg: cfg,
		send: func(addr string, auth smtp.Auth, e *email.Email) error {
			return e.Send(addr, auth)
		},
	}
}

// Message is a single outbound e-mail. Attachment is included when
// AttachmentName is non-empty.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

func (m *Mailer) Send(msg Message) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("mail: smtp is not configured")
	}
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)
	if msg.AttachmentName != "" {
		if _, err := e.Attach(bytes.NewReader(msg.Attachment), msg.AttachmentName, "application/pdf"); err != nil {
			return fmt.Errorf("mail: attach %s: %w", msg.AttachmentName, err)
		}
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, e); err != nil {
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	return nil
}
