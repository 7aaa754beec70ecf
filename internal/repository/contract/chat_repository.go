package contract

import (
	"context"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/specification"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	Update(ctx context.Context, chat *entity.Chat) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	// AppendTurn stores turn after the chat's last turn and fills turn.Position.
	AppendTurn(ctx context.Context, chatId string, turn *entity.Turn) error
	DeleteByCategoryId(ctx context.Context, categoryId string) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
