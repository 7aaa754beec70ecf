package service

import (
	"context"
	"strings"
	"time"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/internal/repository/specification"
	"offline-chat-be/internal/repository/unitofwork"
	"offline-chat-be/pkg/events"

	"github.com/google/uuid"
)

type IChatService interface {
	List(ctx context.Context) ([]*dto.ChatResponse, error)
	ListByCategory(ctx context.Context, categoryId string) ([]*dto.ChatResponse, error)
	Show(ctx context.Context, id string) (*dto.ChatResponse, error)
	// ShowByRecency is Show with the conversation newest turn first.
	ShowByRecency(ctx context.Context, id string) (*dto.ChatResponse, error)
	// Find returns nil when the chat does not exist.
	Find(ctx context.Context, id string) (*entity.Chat, error)
	AppendTurn(ctx context.Context, chatId string, turn *entity.Turn) (*entity.Chat, error)
	Rename(ctx context.Context, req *dto.RenameChatRequest) (*dto.ChatResponse, error)
	Move(ctx context.Context, req *dto.MoveChatRequest) (*dto.ChatResponse, error)
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) (*dto.ClearAllResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func ToTurnResponses(turns []*entity.Turn) []*dto.TurnResponse {
	result := make([]*dto.TurnResponse, 0, len(turns))
	for _, t := range turns {
		result = append(result, &dto.TurnResponse{
			Timestamp: t.Timestamp,
			Question:  t.Question,
			Response:  t.Response,
			HasImage:  t.HasImage,
			ImageData: t.ImageData,
		})
	}
	return result
}

func ToChatResponse(chat *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:           chat.Id,
		Name:         chat.Name,
		Title:        chat.Title(),
		CategoryId:   chat.CategoryId,
		Conversation: ToTurnResponses(chat.Conversation),
		Timestamp:    chat.Timestamp,
	}
}

func toChatResponses(chats []*entity.Chat) []*dto.ChatResponse {
	result := make([]*dto.ChatResponse, 0, len(chats))
	for _, chat := range chats {
		result = append(result, ToChatResponse(chat))
	}
	return result
}

func (c *chatService) List(ctx context.Context) ([]*dto.ChatResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx, specification.MostRecentFirst{})
	if err != nil {
		return nil, err
	}
	return toChatResponses(chats), nil
}

// ListByCategory returns an empty list for an unknown category, so a listing
// taken after the category was deleted is simply empty.
func (c *chatService) ListByCategory(ctx context.Context, categoryId string) ([]*dto.ChatResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.ByCategoryID{CategoryID: categoryId},
		specification.MostRecentFirst{},
	)
	if err != nil {
		return nil, err
	}
	return toChatResponses(chats), nil
}

func (c *chatService) Find(ctx context.Context, id string) (*entity.Chat, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (c *chatService) Show(ctx context.Context, id string) (*dto.ChatResponse, error) {
	chat, err := c.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperror.NotFound("chat", id)
	}
	return ToChatResponse(chat), nil
}

func (c *chatService) ShowByRecency(ctx context.Context, id string) (*dto.ChatResponse, error) {
	chat, err := c.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperror.NotFound("chat", id)
	}
	res := ToChatResponse(chat)
	res.Conversation = ToTurnResponses(chat.TurnsByRecency())
	return res, nil
}

// AppendTurn stores turn at the end of the chat's conversation. An empty
// chatId starts a new chat; an id that is not stored yet creates the chat
// under that id. The write is committed before the chat is returned.
func (c *chatService) AppendTurn(ctx context.Context, chatId string, turn *entity.Turn) (*entity.Chat, error) {
	now := c.now()
	if turn.Timestamp.IsZero() {
		turn.Timestamp = now
	}
	if chatId == "" {
		chatId = uuid.New().String()
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.ChatRepository()
	chat, err := repo.FindOne(ctx, specification.ByID{ID: chatId})
	if err != nil {
		return nil, err
	}

	if chat == nil {
		chat = &entity.Chat{
			Id:         chatId,
			CategoryId: entity.UncategorizedId,
			Timestamp:  now,
		}
		if err := repo.Create(ctx, chat); err != nil {
			return nil, err
		}
	}

	if err := repo.AppendTurn(ctx, chat.Id, turn); err != nil {
		return nil, err
	}

	chat.Timestamp = now
	if err := repo.Update(ctx, chat); err != nil {
		return nil, err
	}

	stored, err := repo.FindOne(ctx, specification.ByID{ID: chat.Id})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	publishEvent(ctx, c.publisher, c.logger, events.ChatTurnAppended, map[string]interface{}{
		"chat_id":  stored.Id,
		"position": turn.Position,
		"title":    stored.Title(),
	})
	return stored, nil
}

func (c *chatService) Rename(ctx context.Context, req *dto.RenameChatRequest) (*dto.ChatResponse, error) {
	name := strings.TrimSpace(req.NewName)
	if name == "" {
		return nil, apperror.Validation("new_name", "chat name is required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.ChatRepository()
	chat, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperror.NotFound("chat", req.Id)
	}

	chat.Name = &name
	if err := repo.Update(ctx, chat); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return ToChatResponse(chat), nil
}

func (c *chatService) Move(ctx context.Context, req *dto.MoveChatRequest) (*dto.ChatResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	category, err := uow.CategoryRepository(entity.CategoryKindChat).FindOne(ctx, specification.ByID{ID: req.CategoryId})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NotFound("category", req.CategoryId)
	}

	repo := uow.ChatRepository()
	chat, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperror.NotFound("chat", req.Id)
	}

	chat.CategoryId = category.Id
	if err := repo.Update(ctx, chat); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return ToChatResponse(chat), nil
}

func (c *chatService) Delete(ctx context.Context, id string) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.ChatRepository()
	count, err := repo.Count(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if count == 0 {
		return apperror.NotFound("chat", id)
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	publishEvent(ctx, c.publisher, c.logger, events.ChatDeleted, map[string]interface{}{"chat_id": id})
	return nil
}

// ClearAll wipes every chat and resets chat categories to the uncategorized
// bucket alone.
func (c *chatService) ClearAll(ctx context.Context) (*dto.ClearAllResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	chats := uow.ChatRepository()
	removed, err := chats.Count(ctx)
	if err != nil {
		return nil, err
	}
	if err := chats.DeleteAll(ctx); err != nil {
		return nil, err
	}

	categories := uow.CategoryRepository(entity.CategoryKindChat)
	if err := categories.DeleteAll(ctx); err != nil {
		return nil, err
	}
	if err := categories.Create(ctx, entity.DefaultCategory(entity.CategoryKindChat)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.logger.Info("CHAT", "All chat data cleared", map[string]interface{}{"chats": removed})
	publishEvent(ctx, c.publisher, c.logger, events.DataCleared, map[string]interface{}{"chats": removed})
	return &dto.ClearAllResponse{
		Message:      "All chat data cleared successfully",
		ChatsRemoved: removed,
	}, nil
}
