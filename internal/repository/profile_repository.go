package repository

import (
	"context"

	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/store"
)

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
	PutProfile(ctx context.Context, profile models.UserProfile) error
	// DeleteProfile succeeds when the document is already absent so a
	// repeated remove stays safe.
	DeleteProfile(ctx context.Context, userID string) error
}

type profileRepository struct {
	store store.Store
}

func NewProfileRepository(s store.Store) ProfileRepository {
	return &profileRepository{store: s}
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	raw, err := r.store.Get(ctx, store.CollectionProfiles, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	var profile models.UserProfile
	if err := store.Decode(raw, &profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (r *profileRepository) PutProfile(ctx context.Context, profile models.UserProfile) error {
	return r.store.Put(ctx, store.CollectionProfiles, profile.UserID, profile)
}

func (r *profileRepository) DeleteProfile(ctx context.Context, userID string) error {
	return r.store.Delete(ctx, store.CollectionProfiles, userID)
}
