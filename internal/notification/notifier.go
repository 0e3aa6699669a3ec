package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier delivers artist onboarding invitations.
type Notifier interface {
	SendInvite(ctx context.Context, email, inviteURL, name, message string) error
}

// LogNotifier logs the invite instead of sending it; used in local dev and
// wherever SMTP is not configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("notifier", "log").Logger()}
}

func (n *LogNotifier) SendInvite(_ context.Context, email, inviteURL, name, _ string) error {
	n.logger.Info().
		Str("email", email).
		Str("name", name).
		Str("invite_url", inviteURL).
		Msg("onboarding invite (not sent, log notifier)")
	return nil
}
