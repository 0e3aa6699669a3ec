// Package worker runs the background invite expiry sweep.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/invites"
	"github.com/atelierhq/curator-api/internal/models"
)

type SweeperConfig struct {
	Interval time.Duration
	TTL      time.Duration
}

// Sweeper periodically marks stale pending invites as expired. Expired
// invites can still be archived by an operator.
type Sweeper struct {
	cfg     SweeperConfig
	invites *invites.Lifecycle
	logger  zerolog.Logger
	now     func() time.Time
}

func NewSweeper(cfg SweeperConfig, lifecycle *invites.Lifecycle, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		cfg:     cfg,
		invites: lifecycle,
		logger:  logger.With().Str("component", "invite_sweeper").Logger(),
		now:     time.Now,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.cfg.Interval).Dur("ttl", s.cfg.TTL).Msg("invite sweeper started")
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("invite sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				// Log and keep sweeping on the next tick.
				s.logger.Error().Err(err).Msg("invite sweep failed")
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	all, err := s.invites.List(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	expired := 0
	for _, invite := range all {
		if invite.Status != models.InviteStatusPending {
			continue
		}
		if !invite.IsExpired(now, s.cfg.TTL) {
			continue
		}
		if err := s.invites.Expire(ctx, invite.Token); err != nil {
			s.logger.Warn().Err(err).Str("token", invite.Token).Msg("failed to expire invite")
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info().Int("expired", expired).Msg("invite sweep complete")
	}
	return nil
}
