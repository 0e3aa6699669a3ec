package repository

import (
	"context"

	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/store"
)

type RequestRepository interface {
	GetRequest(ctx context.Context, id string) (models.ArtistRequest, error)
	PutRequest(ctx context.Context, request models.ArtistRequest) error
	ListRequests(ctx context.Context) ([]models.ArtistRequest, error)
}

type requestRepository struct {
	store store.Store
}

func NewRequestRepository(s store.Store) RequestRepository {
	return &requestRepository{store: s}
}

func (r *requestRepository) GetRequest(ctx context.Context, id string) (models.ArtistRequest, error) {
	raw, err := r.store.Get(ctx, store.CollectionRequests, id)
	if err != nil {
		return models.ArtistRequest{}, err
	}
	var request models.ArtistRequest
	if err := store.Decode(raw, &request); err != nil {
		return models.ArtistRequest{}, err
	}
	return request, nil
}

func (r *requestRepository) PutRequest(ctx context.Context, request models.ArtistRequest) error {
	return r.store.Put(ctx, store.CollectionRequests, request.ID, request)
}

func (r *requestRepository) ListRequests(ctx context.Context) ([]models.ArtistRequest, error) {
	docs, err := r.store.List(ctx, store.CollectionRequests)
	if err != nil {
		return nil, err
	}
	requests := make([]models.ArtistRequest, 0, len(docs))
	for _, raw := range docs {
		var request models.ArtistRequest
		if err := store.Decode(raw, &request); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}
