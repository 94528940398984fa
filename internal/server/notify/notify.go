// Package notify delivers verification codes and links to users.
package notify

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// SMSSender delivers a text message to an E.164 number.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, body string) error
}

// Mailer delivers an email with a plain-text and an optional HTML body.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// LogSender writes messages to the log instead of delivering them. It backs
// both SMS and mail in development.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "notify")}
}

func (s *LogSender) SendSMS(ctx context.Context, phoneNumber, body string) error {
	s.logger.Info(ctx, "sms", "to", phoneNumber, "body", body)
	return nil
}

func (s *LogSender) SendMail(ctx context.Context, to, subject, textBody, _ string) error {
	s.logger.Info(ctx, "mail", "to", to, "subject", subject, "body", textBody)
	return nil
}
