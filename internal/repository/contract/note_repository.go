package contract

import (
	"context"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/specification"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	DeleteByCategory(ctx context.Context, category string) (int64, error)
	RenameCategory(ctx context.Context, oldName, newName string) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
