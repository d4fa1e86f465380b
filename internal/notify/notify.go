// Package notify sends transactional emails. Dispatch is
// fire-and-forget: a failed send is logged and never fails the
// workflow that triggered it.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EmailSender delivers one email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Dispatcher sends emails asynchronously with its own timeout,
// detached from the caller's request context.
type Dispatcher struct {
	sender  EmailSender
	timeout time.Duration
	logger  zerolog.Logger
}

// NewDispatcher creates an async email dispatcher.
func NewDispatcher(sender EmailSender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		timeout: 30 * time.Second,
		logger:  logger.With().Str("component", "notify-dispatcher").Logger(),
	}
}

// Send queues the email for delivery and returns immediately.
func (d *Dispatcher) Send(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.SendEmail(ctx, to, subject, body); err != nil {
			d.logger.Warn().
				Err(err).
				Str("to", to).
				Str("subject", subject).
				Msg("failed to send email")
			return
		}

		d.logger.Debug().
			Str("to", to).
			Str("subject", subject).
			Msg("email sent")
	}()
}
