// Package invites owns the artist onboarding invite lifecycle: token
// issuance, delivery, redemption, revocation and archival. Invites are never
// hard-deleted; archive is the soft delete that preserves the audit trail.
package invites

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/atelierhq/curator-api/internal/lifecycle"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/notification"
	"github.com/atelierhq/curator-api/internal/repository"
	"github.com/atelierhq/curator-api/internal/store"
)

type Lifecycle struct {
	repo     repository.InviteRepository
	notifier notification.Notifier
	origin   string
	now      func() time.Time
}

func NewLifecycle(repo repository.InviteRepository, notifier notification.Notifier, origin string) *Lifecycle {
	return &Lifecycle{
		repo:     repo,
		notifier: notifier,
		origin:   strings.TrimRight(origin, "/"),
		now:      time.Now,
	}
}

// OnboardingURL builds the bearer link embedded in the invite email.
func (l *Lifecycle) OnboardingURL(token string) string {
	return fmt.Sprintf("%s/onboarding/artist/%s", l.origin, token)
}

// Create persists a pending invite keyed by a fresh token, then hands the
// onboarding link to the notifier. Persist and send are two independently
// fallible steps: a failed send leaves the pending record behind with
// lastError set, and the operator resends.
func (l *Lifecycle) Create(ctx context.Context, email, name, message, createdBy string) (*lifecycle.Saga, *models.ArtistInvite, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, nil, errors.Wrap(lifecycle.ErrValidation, "email is required")
	}

	token, err := generateToken()
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate invite token")
	}

	invite := &models.ArtistInvite{
		Token:     token,
		Email:     email,
		Name:      strings.TrimSpace(name),
		Message:   strings.TrimSpace(message),
		Status:    models.InviteStatusPending,
		CreatedAt: l.now().UTC(),
		CreatedBy: createdBy,
	}

	saga := &lifecycle.Saga{
		Operation: "invite.create",
		Steps: []lifecycle.Step{
			{
				Name: "invite.persist",
				Apply: func(ctx context.Context) error {
					return l.repo.PutInvite(ctx, *invite)
				},
			},
			{
				Name: "invite.send",
				Apply: func(ctx context.Context) error {
					return l.deliver(ctx, invite)
				},
			},
		},
	}
	return saga, invite, nil
}

// Resend re-invokes the notifier with the same link. Status never changes:
// success updates lastSentAt, failure records lastError.
func (l *Lifecycle) Resend(ctx context.Context, token string) (*lifecycle.Saga, error) {
	invite, err := l.get(ctx, token)
	if err != nil {
		return nil, err
	}

	return &lifecycle.Saga{
		Operation: "invite.resend",
		Steps: []lifecycle.Step{
			{
				Name: "invite.send",
				Apply: func(ctx context.Context) error {
					return l.deliver(ctx, &invite)
				},
			},
		},
	}, nil
}

// Revoke withdraws a pending invite. Revocation auto-archives: the invite
// lands directly in archived with both revokedAt and archivedAt set.
func (l *Lifecycle) Revoke(ctx context.Context, token string) (*lifecycle.Saga, error) {
	invite, err := l.get(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.Status != models.InviteStatusPending {
		return nil, errors.Wrapf(lifecycle.ErrInvalidTransition, "revoke requires pending, invite is %s", invite.Status)
	}

	return &lifecycle.Saga{
		Operation: "invite.revoke",
		Steps: []lifecycle.Step{
			{
				Name: "invite.revoke",
				Apply: func(ctx context.Context) error {
					now := l.now().UTC()
					invite.Status = models.InviteStatusArchived
					invite.RevokedAt = &now
					invite.ArchivedAt = &now
					return l.repo.PutInvite(ctx, invite)
				},
			},
		},
	}, nil
}

// Archive soft-deletes an invite in any non-archived state.
func (l *Lifecycle) Archive(ctx context.Context, token string) (*lifecycle.Saga, error) {
	invite, err := l.get(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.Status == models.InviteStatusArchived {
		return nil, errors.Wrap(lifecycle.ErrInvalidTransition, "invite is already archived")
	}

	return &lifecycle.Saga{
		Operation: "invite.archive",
		Steps: []lifecycle.Step{
			{
				Name: "invite.archive",
				Apply: func(ctx context.Context) error {
					now := l.now().UTC()
					invite.Status = models.InviteStatusArchived
					invite.ArchivedAt = &now
					return l.repo.PutInvite(ctx, invite)
				},
			},
		},
	}, nil
}

// Delete is an alias for Archive; invite history is always retained.
func (l *Lifecycle) Delete(ctx context.Context, token string) (*lifecycle.Saga, error) {
	saga, err := l.Archive(ctx, token)
	if err != nil {
		return nil, err
	}
	saga.Operation = "invite.delete"
	return saga, nil
}

// Redeem is the one transition triggered by the invited party. It requires a
// still-pending invite.
func (l *Lifecycle) Redeem(ctx context.Context, token, redeemerID string) (*lifecycle.Saga, error) {
	invite, err := l.get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !invite.IsRedeemable() {
		return nil, errors.Wrapf(lifecycle.ErrInvalidTransition, "redeem requires pending, invite is %s", invite.Status)
	}

	return &lifecycle.Saga{
		Operation: "invite.redeem",
		Steps: []lifecycle.Step{
			{
				Name: "invite.redeem",
				Apply: func(ctx context.Context) error {
					now := l.now().UTC()
					invite.Status = models.InviteStatusRedeemed
					invite.RedeemedAt = &now
					invite.RedeemedBy = redeemerID
					return l.repo.PutInvite(ctx, invite)
				},
			},
		},
	}, nil
}

// Touch records that the onboarding link was opened. Best effort; the caller
// renders the invite either way.
func (l *Lifecycle) Touch(ctx context.Context, token string) (models.ArtistInvite, error) {
	invite, err := l.get(ctx, token)
	if err != nil {
		return models.ArtistInvite{}, err
	}
	now := l.now().UTC()
	invite.LastAccessedAt = &now
	if err := l.repo.PutInvite(ctx, invite); err != nil {
		return invite, err
	}
	return invite, nil
}

// Expire marks a pending invite expired; used by the expiry sweeper.
func (l *Lifecycle) Expire(ctx context.Context, token string) error {
	invite, err := l.get(ctx, token)
	if err != nil {
		return err
	}
	if invite.Status != models.InviteStatusPending {
		return errors.Wrapf(lifecycle.ErrInvalidTransition, "expire requires pending, invite is %s", invite.Status)
	}
	invite.Status = models.InviteStatusExpired
	return l.repo.PutInvite(ctx, invite)
}

func (l *Lifecycle) Get(ctx context.Context, token string) (models.ArtistInvite, error) {
	return l.get(ctx, token)
}

func (l *Lifecycle) List(ctx context.Context) ([]models.ArtistInvite, error) {
	return l.repo.ListInvites(ctx)
}

// deliver sends the onboarding email and records the outcome on the invite.
// The send error wins over any bookkeeping error.
func (l *Lifecycle) deliver(ctx context.Context, invite *models.ArtistInvite) error {
	url := l.OnboardingURL(invite.Token)
	if err := l.notifier.SendInvite(ctx, invite.Email, url, invite.Name, invite.Message); err != nil {
		invite.LastError = err.Error()
		_ = l.repo.PutInvite(ctx, *invite)
		return errors.Wrap(err, "send onboarding email")
	}

	now := l.now().UTC()
	invite.LastSentAt = &now
	invite.LastError = ""
	return l.repo.PutInvite(ctx, *invite)
}

func (l *Lifecycle) get(ctx context.Context, token string) (models.ArtistInvite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.ArtistInvite{}, errors.Wrap(lifecycle.ErrValidation, "token is required")
	}
	invite, err := l.repo.GetInvite(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.ArtistInvite{}, errors.Wrap(lifecycle.ErrNotFound, "invite")
		}
		return models.ArtistInvite{}, err
	}
	return invite, nil
}

// generateToken returns an unguessable URL-safe token; it doubles as the
// invite document id and the bearer credential in the onboarding link.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
