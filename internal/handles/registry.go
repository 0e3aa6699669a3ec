// Package handles enforces that a username maps to at most one active user.
package handles

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/store"
)

// ErrTaken is returned when claiming a username owned by a different user.
var ErrTaken = errors.New("username is already taken")

type Registry struct {
	store store.Store
}

func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

// Lookup returns the handle record for a username, or store.ErrNotFound.
func (r *Registry) Lookup(ctx context.Context, username string) (models.Handle, error) {
	username = normalize(username)
	raw, err := r.store.Get(ctx, store.CollectionHandles, username)
	if err != nil {
		return models.Handle{}, err
	}
	var handle models.Handle
	if err := store.Decode(raw, &handle); err != nil {
		return models.Handle{}, err
	}
	handle.Username = username
	return handle, nil
}

// Claim assigns the username to the user. Claiming a name you already own is
// a no-op; claiming one owned by someone else fails with ErrTaken.
func (r *Registry) Claim(ctx context.Context, username, userID string) error {
	username = normalize(username)
	if username == "" || userID == "" {
		return errors.New("username and user id are required")
	}

	existing, err := r.Lookup(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err == nil && existing.IsOwned() && *existing.UserID != userID {
		return ErrTaken
	}

	return r.store.Put(ctx, store.CollectionHandles, username, models.Handle{
		Username: username,
		UserID:   &userID,
	})
}

// Release nulls the mapping so the username becomes reusable. The record is
// kept; releasing an unknown username is a no-op.
func (r *Registry) Release(ctx context.Context, username string) error {
	username = normalize(username)
	if username == "" {
		return nil
	}

	if _, err := r.Lookup(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	return r.store.Put(ctx, store.CollectionHandles, username, models.Handle{
		Username: username,
		UserID:   nil,
	})
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
