package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/handles"
	"github.com/atelierhq/curator-api/internal/invites"
	"github.com/atelierhq/curator-api/internal/lifecycle"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/repository"
	"github.com/atelierhq/curator-api/internal/store"
	"github.com/atelierhq/curator-api/internal/verification"
)

type fakeNotifier struct {
	sent []string
	fail error
}

func (f *fakeNotifier) SendInvite(_ context.Context, email, _, _, _ string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, email)
	return nil
}

type fixture struct {
	store    *store.MemoryStore
	requests repository.RequestRepository
	profiles repository.ProfileRepository
	registry *handles.Registry
	notifier *fakeNotifier
	coord    *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := store.NewMemoryStore()
	requests := repository.NewRequestRepository(mem)
	profiles := repository.NewProfileRepository(mem)
	inviteRepo := repository.NewInviteRepository(mem)
	registry := handles.NewRegistry(mem)
	notifier := &fakeNotifier{}

	v := verification.NewLifecycle(requests, profiles, registry)
	i := invites.NewLifecycle(inviteRepo, notifier, "https://studio.example.com")

	return &fixture{
		store:    mem,
		requests: requests,
		profiles: profiles,
		registry: registry,
		notifier: notifier,
		coord:    New(v, i, zerolog.Nop()),
	}
}

func (f *fixture) seedRequest(t *testing.T, id, userID, username string) {
	t.Helper()
	ctx := context.Background()

	err := f.requests.PutRequest(ctx, models.ArtistRequest{
		ID:     id,
		UserID: userID,
		Status: models.RequestStatusPending,
		Applicant: models.Applicant{
			DisplayName: "Test Artist",
			Email:       "artist@example.com",
			Username:    username,
		},
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}

	err = f.profiles.PutProfile(ctx, models.UserProfile{
		UserID:   userID,
		IsActive: true,
		Username: username,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if username != "" {
		if err := f.registry.Claim(ctx, username, userID); err != nil {
			t.Fatalf("seed handle: %v", err)
		}
	}
}

func TestApproveGrantsProfessionalFlags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "theirhandle")

	result := f.coord.Approve(ctx, "r1", "admin1", "looks good")
	if result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("expected applied, got %s (%v)", result.Outcome, result.Err)
	}

	request, err := f.requests.GetRequest(ctx, "r1")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if request.Status != models.RequestStatusApproved {
		t.Fatalf("expected approved, got %s", request.Status)
	}
	if request.ReviewedBy != "admin1" || request.ReviewedAt == nil {
		t.Fatalf("audit fields not set: %+v", request)
	}

	profile, err := f.profiles.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if !profile.IsProfessional || !profile.IsVerified {
		t.Fatalf("profile flags not granted: %+v", profile)
	}
}

func TestApproveTwiceIsRejectedWithoutWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "")

	if result := f.coord.Approve(ctx, "r1", "admin1", ""); result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("first approve failed: %v", result.Err)
	}

	result := f.coord.Approve(ctx, "r1", "admin2", "")
	if result.Outcome != lifecycle.OutcomeRejected {
		t.Fatalf("expected rejected, got %s", result.Outcome)
	}
	if !errors.Is(result.Err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", result.Err)
	}

	// Attribution still belongs to the first reviewer.
	request, _ := f.requests.GetRequest(ctx, "r1")
	if request.ReviewedBy != "admin1" {
		t.Fatalf("repeat approve must not rewrite audit trail: %+v", request)
	}
}

func TestSuspendAndReinstate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "")
	f.coord.Approve(ctx, "r1", "admin1", "")

	if result := f.coord.Suspend(ctx, "r1", "admin2"); result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("suspend failed: %v", result.Err)
	}

	profile, _ := f.profiles.GetProfile(ctx, "u1")
	if profile.IsActive || profile.IsProfessional {
		t.Fatalf("suspend must deactivate profile: %+v", profile)
	}
	if profile.SuspendedAt == nil || profile.SuspendedBy != "admin2" {
		t.Fatalf("suspension audit missing: %+v", profile)
	}
	request, _ := f.requests.GetRequest(ctx, "r1")
	if request.Status != models.RequestStatusSuspended {
		t.Fatalf("expected suspended, got %s", request.Status)
	}

	if result := f.coord.Reinstate(ctx, "r1", "admin2"); result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("reinstate failed: %v", result.Err)
	}

	profile, _ = f.profiles.GetProfile(ctx, "u1")
	if !profile.IsActive || !profile.IsProfessional {
		t.Fatalf("reinstate must reactivate profile: %+v", profile)
	}
	if profile.SuspendedAt != nil || profile.SuspendedBy != "" {
		t.Fatalf("suspension audit not cleared: %+v", profile)
	}
	request, _ = f.requests.GetRequest(ctx, "r1")
	if request.Status != models.RequestStatusApproved {
		t.Fatalf("expected approved after reinstate, got %s", request.Status)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "")

	result := f.coord.Reject(ctx, "r1", "admin1", "", "")
	if result.Outcome != lifecycle.OutcomeRejected {
		t.Fatalf("expected rejected, got %s", result.Outcome)
	}
	if !errors.Is(result.Err, lifecycle.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", result.Err)
	}

	request, _ := f.requests.GetRequest(ctx, "r1")
	if request.Status != models.RequestStatusPending {
		t.Fatalf("request must stay pending, got %s", request.Status)
	}
}

func TestRejectRecordsReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "")

	result := f.coord.Reject(ctx, "r1", "admin1", "portfolio too thin", "")
	if result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("reject failed: %v", result.Err)
	}

	request, _ := f.requests.GetRequest(ctx, "r1")
	if request.Status != models.RequestStatusRejected || request.RejectionReason != "portfolio too thin" {
		t.Fatalf("unexpected request: %+v", request)
	}

	// Rejected applicants never received profile flags.
	profile, _ := f.profiles.GetProfile(ctx, "u1")
	if profile.IsProfessional || profile.IsVerified {
		t.Fatalf("reject must not touch profile flags: %+v", profile)
	}
}

func TestRemoveDeletesProfileAndReleasesHandle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "theirhandle")
	f.coord.Approve(ctx, "r1", "admin1", "")

	result := f.coord.Remove(ctx, "r1", "admin1")
	if result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("remove failed: %v", result.Err)
	}

	request, _ := f.requests.GetRequest(ctx, "r1")
	if request.Status != models.RequestStatusRemoved {
		t.Fatalf("expected removed, got %s", request.Status)
	}
	if _, err := f.profiles.GetProfile(ctx, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("profile must be gone, got %v", err)
	}
	handle, err := f.registry.Lookup(ctx, "theirhandle")
	if err != nil {
		t.Fatalf("handle record must survive: %v", err)
	}
	if handle.IsOwned() {
		t.Fatalf("handle must be released: %+v", handle)
	}
}

func TestRemoveIsIrreversible(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "")
	f.coord.Approve(ctx, "r1", "admin1", "")
	f.coord.Remove(ctx, "r1", "admin1")

	for name, result := range map[string]lifecycle.Result{
		"approve":   f.coord.Approve(ctx, "r1", "admin1", ""),
		"suspend":   f.coord.Suspend(ctx, "r1", "admin1"),
		"reinstate": f.coord.Reinstate(ctx, "r1", "admin1"),
		"remove":    f.coord.Remove(ctx, "r1", "admin1"),
	} {
		if result.Outcome != lifecycle.OutcomeRejected || !errors.Is(result.Err, lifecycle.ErrInvalidTransition) {
			t.Fatalf("%s after remove must be an invalid transition, got %s (%v)", name, result.Outcome, result.Err)
		}
	}
}

func TestRemoveIsSafeToRepeatAfterPartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "theirhandle")
	f.coord.Approve(ctx, "r1", "admin1", "")

	// First attempt dies on the handle release, after the request write and
	// profile delete have landed.
	boom := errors.New("store down")
	f.store.FailPut = func(collection, _ string) error {
		if collection == store.CollectionHandles {
			return boom
		}
		return nil
	}
	result := f.coord.Remove(ctx, "r1", "admin1")
	if result.Outcome != lifecycle.OutcomePartial {
		t.Fatalf("expected partial, got %s (%v)", result.Outcome, result.Err)
	}
	if result.FailedStep != "handle.release" || result.StepsApplied != 2 {
		t.Fatalf("unexpected partial result: %+v", result)
	}

	// The stale handle is a repairable inconsistency, not a fatal state:
	// releasing it by hand succeeds once the store recovers.
	f.store.FailPut = nil
	if err := f.registry.Release(ctx, "theirhandle"); err != nil {
		t.Fatalf("manual repair failed: %v", err)
	}
	handle, _ := f.registry.Lookup(ctx, "theirhandle")
	if handle.IsOwned() {
		t.Fatalf("handle must be released after repair: %+v", handle)
	}
}

func TestApprovePartialFailureOnProfileWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", "")

	boom := errors.New("store down")
	f.store.FailPut = func(collection, _ string) error {
		if collection == store.CollectionProfiles {
			return boom
		}
		return nil
	}

	result := f.coord.Approve(ctx, "r1", "admin1", "")
	if result.Outcome != lifecycle.OutcomePartial {
		t.Fatalf("expected partial, got %s (%v)", result.Outcome, result.Err)
	}
	if result.FailedStep != "profile.flags" || result.StepsApplied != 1 {
		t.Fatalf("unexpected partial result: %+v", result)
	}

	// The request write stood; the known inconsistent outcome.
	request, _ := f.requests.GetRequest(ctx, "r1")
	if request.Status != models.RequestStatusApproved {
		t.Fatalf("request write should have landed: %+v", request)
	}
	profile, _ := f.profiles.GetProfile(ctx, "u1")
	if profile.IsProfessional {
		t.Fatalf("profile write must not have landed: %+v", profile)
	}
}

func TestCreateAndRevokeInvite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, invite := f.coord.CreateInvite(ctx, "artist@example.com", "Robin", "join us", "admin1")
	if result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("create failed: %v", result.Err)
	}
	if invite.Token == "" || invite.Status != models.InviteStatusPending {
		t.Fatalf("unexpected invite: %+v", invite)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0] != "artist@example.com" {
		t.Fatalf("notifier not invoked: %v", f.notifier.sent)
	}

	revoke := f.coord.RevokeInvite(ctx, invite.Token)
	if revoke.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("revoke failed: %v", revoke.Err)
	}

	repo := repository.NewInviteRepository(f.store)
	stored, err := repo.GetInvite(ctx, invite.Token)
	if err != nil {
		t.Fatalf("get invite: %v", err)
	}
	// A single revoke lands directly in archived with both timestamps set.
	if stored.Status != models.InviteStatusArchived {
		t.Fatalf("expected archived, got %s", stored.Status)
	}
	if stored.RevokedAt == nil || stored.ArchivedAt == nil {
		t.Fatalf("revoke must set revokedAt and archivedAt: %+v", stored)
	}
}

func TestInviteMonotonicity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, invite := f.coord.CreateInvite(ctx, "artist@example.com", "", "", "admin1")

	if result := f.coord.RedeemInvite(ctx, invite.Token, "user-9"); result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("redeem failed: %v", result.Err)
	}

	// Once redeemed, a second redemption or revocation is invalid.
	if result := f.coord.RedeemInvite(ctx, invite.Token, "user-10"); !errors.Is(result.Err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", result.Err)
	}
	if result := f.coord.RevokeInvite(ctx, invite.Token); !errors.Is(result.Err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", result.Err)
	}

	// Archival is still allowed, and is terminal.
	if result := f.coord.ArchiveInvite(ctx, invite.Token); result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("archive failed: %v", result.Err)
	}
	if result := f.coord.ArchiveInvite(ctx, invite.Token); !errors.Is(result.Err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("double archive must be invalid, got %v", result.Err)
	}
}

func TestDeleteInviteArchivesInPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, invite := f.coord.CreateInvite(ctx, "artist@example.com", "", "", "admin1")
	f.coord.RedeemInvite(ctx, invite.Token, "user-9")

	result := f.coord.DeleteInvite(ctx, invite.Token)
	if result.Outcome != lifecycle.OutcomeApplied {
		t.Fatalf("delete failed: %v", result.Err)
	}

	repo := repository.NewInviteRepository(f.store)
	stored, err := repo.GetInvite(ctx, invite.Token)
	if err != nil {
		t.Fatalf("invite must survive delete: %v", err)
	}
	if stored.Status != models.InviteStatusArchived {
		t.Fatalf("expected archived, got %s", stored.Status)
	}
}

func TestOperationsOnMissingRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result := f.coord.Approve(ctx, "ghost", "admin1", "")
	if result.Outcome != lifecycle.OutcomeRejected || !errors.Is(result.Err, lifecycle.ErrNotFound) {
		t.Fatalf("expected ErrNotFound rejection, got %s (%v)", result.Outcome, result.Err)
	}
}
