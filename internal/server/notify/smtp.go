package notify

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	mail "github.com/go-mail/mail"
)

type sendFunc func(d *mail.Dialer, m ...*mail.Message) error

// SMTPMailer sends mail through an SMTP relay with STARTTLS when offered.
type SMTPMailer struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger logging.Logger
	send   sendFunc
}

func NewSMTPMailer(host string, port int, user, pass, from string, l logging.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:   host,
		port:   port,
		user:   user,
		pass:   pass,
		from:   from,
		logger: l.With("module", "smtp"),
		send:   (*mail.Dialer).DialAndSend,
	}
}

func (s *SMTPMailer) message(to, subject, textBody, htmlBody string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}
	return m
}

func (s *SMTPMailer) SendMail(ctx context.Context, to, subject, textBody, htmlBody string) error {
	d := mail.NewDialer(s.host, s.port, s.user, s.pass)
	d.TLSConfig = &tls.Config{ServerName: s.host}

	if err := s.send(d, s.message(to, subject, textBody, htmlBody)); err != nil {
		s.logger.Error(ctx, "smtp send failed", "to", to, "error", err)
		return fmt.Errorf("smtp send: %w", err)
	}
	s.logger.Debug(ctx, "smtp send ok", "to", to)
	return nil
}
