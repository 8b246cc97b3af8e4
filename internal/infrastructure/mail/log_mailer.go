// Package mail holds Mailer implementations. The platform does not own an
// SMTP relay; deployments plug in their delivery provider behind
// ports.Mailer. LogMailer is the development implementation: it writes the
// links to the structured log instead of sending them.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerification(_ context.Context, email, link string) error {
	m.logger.Info().Str("email", email).Str("link", link).Msg("verification mail")
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.logger.Info().Str("email", email).Str("link", link).Msg("password reset mail")
	return nil
}
