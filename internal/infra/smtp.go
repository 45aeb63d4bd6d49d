package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"kiosco/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends mail with attachments through the configured SMTP relay.
type Mailer struct {
	from string
	addr string
	auth smtp.Auth
}

func NewMailer(cfg *config.Config) *Mailer {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &Mailer{
		from: cfg.SMTPUser,
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth: auth,
	}
}

// Configurado reports whether an SMTP host was set.
func (m *Mailer) Configurado() bool { return m.addr != "" && m.addr[0] != ':' }

// EnviarCierre mails a closing PDF held in memory.
func (m *Mailer) EnviarCierre(to, subject, body, nombreArchivo string, pdf []byte) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if len(pdf) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdf), nombreArchivo, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}
	return e.Send(m.addr, m.auth)
}
