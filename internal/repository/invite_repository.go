package repository

import (
	"context"
	"sort"

	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/store"
)

type InviteRepository interface {
	GetInvite(ctx context.Context, token string) (models.ArtistInvite, error)
	PutInvite(ctx context.Context, invite models.ArtistInvite) error
	ListInvites(ctx context.Context) ([]models.ArtistInvite, error)
}

type inviteRepository struct {
	store store.Store
}

func NewInviteRepository(s store.Store) InviteRepository {
	return &inviteRepository{store: s}
}

func (r *inviteRepository) GetInvite(ctx context.Context, token string) (models.ArtistInvite, error) {
	raw, err := r.store.Get(ctx, store.CollectionInvites, token)
	if err != nil {
		return models.ArtistInvite{}, err
	}
	var invite models.ArtistInvite
	if err := store.Decode(raw, &invite); err != nil {
		return models.ArtistInvite{}, err
	}
	return invite, nil
}

func (r *inviteRepository) PutInvite(ctx context.Context, invite models.ArtistInvite) error {
	return r.store.Put(ctx, store.CollectionInvites, invite.Token, invite)
}

func (r *inviteRepository) ListInvites(ctx context.Context) ([]models.ArtistInvite, error) {
	docs, err := r.store.List(ctx, store.CollectionInvites)
	if err != nil {
		return nil, err
	}
	invites := make([]models.ArtistInvite, 0, len(docs))
	for _, raw := range docs {
		var invite models.ArtistInvite
		if err := store.Decode(raw, &invite); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	sort.Slice(invites, func(i, j int) bool {
		return invites[i].CreatedAt.After(invites[j].CreatedAt)
	})
	return invites, nil
}
