package memory

import (
	"context"
	"time"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type ViewStateRepository struct {
	cache *cache.Cache
}

func NewViewStateRepository(ttl time.Duration) contract.ViewStateRepository {
	// Purge expired entries every 10 minutes.
	c := cache.New(ttl, 10*time.Minute)
	return &ViewStateRepository{
		cache: c,
	}
}

func (r *ViewStateRepository) Save(_ context.Context, state *entity.ViewState) error {
	stored := *state
	r.cache.Set(state.ClientId, &stored, cache.DefaultExpiration)
	return nil
}

func (r *ViewStateRepository) Get(_ context.Context, clientId string) (*entity.ViewState, error) {
	if x, found := r.cache.Get(clientId); found {
		stored := *x.(*entity.ViewState)
		return &stored, nil
	}
	return nil, nil
}

func (r *ViewStateRepository) Delete(_ context.Context, clientId string) error {
	r.cache.Delete(clientId)
	return nil
}
