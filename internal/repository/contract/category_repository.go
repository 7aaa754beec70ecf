package contract

import (
	"context"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/specification"
)

// CategoryRepository is bound to one kind; chat and note categories are
// separate namespaces.
type CategoryRepository interface {
	Kind() entity.CategoryKind
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
