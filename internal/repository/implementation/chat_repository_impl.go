package implementation

import (
	"context"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/mapper"
	"offline-chat-be/internal/model"
	"offline-chat-be/internal/repository/contract"
	"offline-chat-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepositoryImpl struct {
	gormStore[model.Chat, entity.Chat]
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	m := mapper.NewChatMapper()
	return &ChatRepositoryImpl{
		gormStore: gormStore[model.Chat, entity.Chat]{db: db, mapper: m, preload: withTurns},
		mapper:    m,
	}
}

// withTurns loads the conversation in insertion order.
func withTurns(db *gorm.DB) *gorm.DB {
	return db.Preload("Turns", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Create inserts the chat row and any turns it already carries. Turns without
// a position are numbered in slice order.
func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	m := r.mapper.ToModel(chat)
	db := r.scoped(ctx)
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}

	if len(chat.Conversation) == 0 {
		return nil
	}

	turns := make([]*model.Turn, 0, len(chat.Conversation))
	for i, t := range chat.Conversation {
		if t.Position == 0 {
			t.Position = i + 1
		}
		turns = append(turns, r.mapper.TurnToModel(m.Id, t))
	}
	return db.Create(&turns).Error
}

func (r *ChatRepositoryImpl) Update(ctx context.Context, chat *entity.Chat) error {
	m := r.mapper.ToModel(chat)
	return r.scoped(ctx).Omit(clause.Associations).Save(m).Error
}

func (r *ChatRepositoryImpl) Delete(ctx context.Context, id string) error {
	db := r.scoped(ctx)
	turns := specification.ByChatID{ChatID: id}.Apply(db)
	if err := turns.Delete(&model.Turn{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Chat{}, "id = ?", id).Error
}

func (r *ChatRepositoryImpl) DeleteAll(ctx context.Context) error {
	db := r.scoped(ctx)
	if err := db.Where("1 = 1").Delete(&model.Turn{}).Error; err != nil {
		return err
	}
	return db.Where("1 = 1").Delete(&model.Chat{}).Error
}

func (r *ChatRepositoryImpl) AppendTurn(ctx context.Context, chatId string, turn *entity.Turn) error {
	db := r.scoped(ctx)

	var last int
	turns := specification.ByChatID{ChatID: chatId}.Apply(db.Model(&model.Turn{}))
	if err := turns.Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
		return err
	}

	turn.Position = last + 1
	return db.Create(r.mapper.TurnToModel(chatId, turn)).Error
}

func (r *ChatRepositoryImpl) DeleteByCategoryId(ctx context.Context, categoryId string) (int64, error) {
	db := r.scoped(ctx)

	byCategory := specification.ByCategoryID{CategoryID: categoryId}
	members := byCategory.Apply(db.Model(&model.Chat{})).Select("id")
	if err := db.Where("chat_id IN (?)", members).Delete(&model.Turn{}).Error; err != nil {
		return 0, err
	}

	result := byCategory.Apply(db).Delete(&model.Chat{})
	return result.RowsAffected, result.Error
}
