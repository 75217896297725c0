package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleMailer logs messages instead of sending them. Used in development
// when no SendGrid key is configured.
type ConsoleMailer struct {
	log zerolog.Logger
}

var _ Mailer = (*ConsoleMailer)(nil)

// NewConsoleMailer creates a ConsoleMailer.
func NewConsoleMailer(log zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log.With().Str("component", "console_mailer").Logger()}
}

// Send logs the message and reports success.
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().
		Str("to", msg.ToAddr).
		Str("subject", msg.Subject).
		Msg("Email (console)")
	return nil
}
