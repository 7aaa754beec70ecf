package contract

import (
	"context"

	"offline-chat-be/internal/entity"
)

type ViewStateRepository interface {
	Save(ctx context.Context, state *entity.ViewState) error
	// Get returns nil, nil when nothing is stored for the client.
	Get(ctx context.Context, clientId string) (*entity.ViewState, error)
	Delete(ctx context.Context, clientId string) error
}
