package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"storefront/internal/config"

	"github.com/rs/zerolog"
)

// smtpSender implements EmailSender over plain SMTP.
type smtpSender struct {
	addr   string
	host   string
	user   string
	pass   string
	from   string
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTP-backed email sender.
func NewSMTPSender(cfg config.SMTPConfig, logger zerolog.Logger) EmailSender {
	return &smtpSender{
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:   cfg.Host,
		user:   cfg.Username,
		pass:   cfg.Password,
		from:   cfg.From,
		logger: logger.With().Str("component", "smtp-sender").Logger(),
	}
}

func (s *smtpSender) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := []byte(
		"From: " + s.from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	// smtp.SendMail has no context support; honour cancellation by
	// checking before the dial.
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}

// noopSender implements EmailSender by logging and discarding the
// message. Used when SMTP is not configured.
type noopSender struct {
	logger zerolog.Logger
}

// NewNoopSender creates a sender that drops every email.
func NewNoopSender(logger zerolog.Logger) EmailSender {
	return &noopSender{
		logger: logger.With().Str("component", "noop-sender").Logger(),
	}
}

func (s *noopSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("email delivery disabled, dropping message")
	return nil
}
