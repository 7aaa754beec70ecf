package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "view_state:"

type ViewStateRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewViewStateRepository(rdb *redis.Client, ttl time.Duration) contract.ViewStateRepository {
	return &ViewStateRepository{
		rdb: rdb,
		ttl: ttl,
	}
}

func (r *ViewStateRepository) Save(ctx context.Context, state *entity.ViewState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	return r.rdb.Set(ctx, keyPrefix+state.ClientId, payload, r.ttl).Err()
}

func (r *ViewStateRepository) Get(ctx context.Context, clientId string) (*entity.ViewState, error) {
	payload, err := r.rdb.Get(ctx, keyPrefix+clientId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var state entity.ViewState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode view state: %w", err)
	}
	return &state, nil
}

func (r *ViewStateRepository) Delete(ctx context.Context, clientId string) error {
	return r.rdb.Del(ctx, keyPrefix+clientId).Err()
}
