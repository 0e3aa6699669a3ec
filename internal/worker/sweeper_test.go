package worker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/invites"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/repository"
	"github.com/atelierhq/curator-api/internal/store"
)

type dropNotifier struct{}

func (dropNotifier) SendInvite(context.Context, string, string, string, string) error { return nil }

func TestSweepExpiresOnlyStalePendingInvites(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	ttl := 7 * 24 * time.Hour

	repo := repository.NewInviteRepository(store.NewMemoryStore())
	lifecycle := invites.NewLifecycle(repo, dropNotifier{}, "http://localhost:3000")

	stale := now.Add(-8 * 24 * time.Hour)
	fresh := now.Add(-time.Hour)
	redeemedAt := now.Add(-2 * 24 * time.Hour)
	seed := []models.ArtistInvite{
		{Token: "stale-pending", Email: "a@example.com", Status: models.InviteStatusPending, CreatedAt: stale},
		{Token: "fresh-pending", Email: "b@example.com", Status: models.InviteStatusPending, CreatedAt: fresh},
		{Token: "stale-but-resent", Email: "c@example.com", Status: models.InviteStatusPending, CreatedAt: stale, LastSentAt: &fresh},
		{Token: "stale-redeemed", Email: "d@example.com", Status: models.InviteStatusRedeemed, CreatedAt: stale, RedeemedAt: &redeemedAt},
	}
	for _, invite := range seed {
		if err := repo.PutInvite(ctx, invite); err != nil {
			t.Fatalf("seed %s: %v", invite.Token, err)
		}
	}

	sweeper := NewSweeper(SweeperConfig{Interval: time.Hour, TTL: ttl}, lifecycle, zerolog.Nop())
	sweeper.now = func() time.Time { return now }

	if err := sweeper.sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	want := map[string]models.InviteStatus{
		"stale-pending":    models.InviteStatusExpired,
		"fresh-pending":    models.InviteStatusPending,
		"stale-but-resent": models.InviteStatusPending,
		"stale-redeemed":   models.InviteStatusRedeemed,
	}
	for token, status := range want {
		invite, err := repo.GetInvite(ctx, token)
		if err != nil {
			t.Fatalf("get %s: %v", token, err)
		}
		if invite.Status != status {
			t.Fatalf("%s: expected %s, got %s", token, status, invite.Status)
		}
	}

	// A second sweep finds nothing left to expire.
	if err := sweeper.sweep(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	invite, _ := repo.GetInvite(ctx, "stale-pending")
	if invite.Status != models.InviteStatusExpired {
		t.Fatalf("expired invite must stay expired, got %s", invite.Status)
	}
}
