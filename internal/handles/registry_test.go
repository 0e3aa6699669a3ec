package handles

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/atelierhq/curator-api/internal/store"
)

func TestClaimAndLookup(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(store.NewMemoryStore())

	if err := registry.Claim(ctx, "Painter", "user-1"); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	handle, err := registry.Lookup(ctx, "painter")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !handle.IsOwned() || *handle.UserID != "user-1" {
		t.Fatalf("unexpected handle: %+v", handle)
	}
}

func TestClaimConflict(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(store.NewMemoryStore())

	if err := registry.Claim(ctx, "painter", "user-1"); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := registry.Claim(ctx, "painter", "user-2"); !errors.Is(err, ErrTaken) {
		t.Fatalf("expected ErrTaken, got %v", err)
	}
	// Re-claiming your own handle is a no-op.
	if err := registry.Claim(ctx, "painter", "user-1"); err != nil {
		t.Fatalf("self re-claim should succeed: %v", err)
	}
}

func TestReleaseMakesHandleReusable(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(store.NewMemoryStore())

	if err := registry.Claim(ctx, "painter", "user-1"); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := registry.Release(ctx, "painter"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// The record survives with a null owner.
	handle, err := registry.Lookup(ctx, "painter")
	if err != nil {
		t.Fatalf("lookup after release failed: %v", err)
	}
	if handle.IsOwned() {
		t.Fatalf("handle should be unowned after release: %+v", handle)
	}

	if err := registry.Claim(ctx, "painter", "user-2"); err != nil {
		t.Fatalf("claim after release failed: %v", err)
	}
}

func TestReleaseUnknownIsNoop(t *testing.T) {
	registry := NewRegistry(store.NewMemoryStore())
	if err := registry.Release(context.Background(), "ghost"); err != nil {
		t.Fatalf("release of unknown handle should be a no-op, got %v", err)
	}
}
