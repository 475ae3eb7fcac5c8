package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// LogSender is the no-credential stand-in for the email provider. It
// logs the rendered message instead of delivering it.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "email-stub").Logger()}
}

func (s *LogSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTMLBody)).
		Msg("email send skipped, no provider configured")
	return nil
}
