// Package coordinator is the single entry point the admin console uses to
// mutate artist state. It validates each command once against a just-read
// snapshot, executes the documented write sequence in order, and reports
// applied, partial-at-step-k, or rejected-before-any-write so the caller can
// decide whether to retry, alert, or repair by hand.
package coordinator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/invites"
	"github.com/atelierhq/curator-api/internal/lifecycle"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/verification"
)

type Coordinator struct {
	verification *verification.Lifecycle
	invites      *invites.Lifecycle
	logger       zerolog.Logger
}

func New(v *verification.Lifecycle, i *invites.Lifecycle, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		verification: v,
		invites:      i,
		logger:       logger.With().Str("component", "coordinator").Logger(),
	}
}

func (c *Coordinator) Approve(ctx context.Context, requestID, reviewerID, notes string) lifecycle.Result {
	saga, err := c.verification.Approve(ctx, requestID, reviewerID, notes)
	if err != nil {
		return lifecycle.Rejected("approve", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) Reject(ctx context.Context, requestID, reviewerID, reason, notes string) lifecycle.Result {
	saga, err := c.verification.Reject(ctx, requestID, reviewerID, reason, notes)
	if err != nil {
		return lifecycle.Rejected("reject", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) Suspend(ctx context.Context, requestID, reviewerID string) lifecycle.Result {
	saga, err := c.verification.Suspend(ctx, requestID, reviewerID)
	if err != nil {
		return lifecycle.Rejected("suspend", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) Reinstate(ctx context.Context, requestID, reviewerID string) lifecycle.Result {
	saga, err := c.verification.Reinstate(ctx, requestID, reviewerID)
	if err != nil {
		return lifecycle.Rejected("reinstate", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) Remove(ctx context.Context, requestID, reviewerID string) lifecycle.Result {
	saga, err := c.verification.Remove(ctx, requestID, reviewerID)
	if err != nil {
		return lifecycle.Rejected("remove", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) CreateInvite(ctx context.Context, email, name, message, createdBy string) (lifecycle.Result, *models.ArtistInvite) {
	saga, invite, err := c.invites.Create(ctx, email, name, message, createdBy)
	if err != nil {
		return lifecycle.Rejected("invite.create", err), nil
	}
	return c.run(ctx, saga), invite
}

func (c *Coordinator) ResendInvite(ctx context.Context, token string) lifecycle.Result {
	saga, err := c.invites.Resend(ctx, token)
	if err != nil {
		return lifecycle.Rejected("invite.resend", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) RevokeInvite(ctx context.Context, token string) lifecycle.Result {
	saga, err := c.invites.Revoke(ctx, token)
	if err != nil {
		return lifecycle.Rejected("invite.revoke", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) ArchiveInvite(ctx context.Context, token string) lifecycle.Result {
	saga, err := c.invites.Archive(ctx, token)
	if err != nil {
		return lifecycle.Rejected("invite.archive", err)
	}
	return c.run(ctx, saga)
}

// DeleteInvite archives in place; invites are never hard-deleted.
func (c *Coordinator) DeleteInvite(ctx context.Context, token string) lifecycle.Result {
	saga, err := c.invites.Delete(ctx, token)
	if err != nil {
		return lifecycle.Rejected("invite.delete", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) RedeemInvite(ctx context.Context, token, redeemerID string) lifecycle.Result {
	saga, err := c.invites.Redeem(ctx, token, redeemerID)
	if err != nil {
		return lifecycle.Rejected("invite.redeem", err)
	}
	return c.run(ctx, saga)
}

func (c *Coordinator) run(ctx context.Context, saga *lifecycle.Saga) lifecycle.Result {
	result := lifecycle.Run(ctx, saga)
	switch result.Outcome {
	case lifecycle.OutcomeApplied:
		c.logger.Info().
			Str("operation", result.Operation).
			Int("steps", result.StepsApplied).
			Msg("operation applied")
	case lifecycle.OutcomePartial:
		c.logger.Error().
			Err(result.Err).
			Str("operation", result.Operation).
			Str("failed_step", result.FailedStep).
			Int("steps_applied", result.StepsApplied).
			Msg("operation partially applied; manual repair may be needed")
	default:
		c.logger.Warn().
			Err(result.Err).
			Str("operation", result.Operation).
			Str("failed_step", result.FailedStep).
			Msg("operation did not apply")
	}
	return result
}
