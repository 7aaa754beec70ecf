package contract

import (
	"context"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/specification"
)

type PersonalityRepository interface {
	Create(ctx context.Context, personality *entity.Personality) error
	Update(ctx context.Context, personality *entity.Personality) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Personality, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Personality, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
