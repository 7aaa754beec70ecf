package mapper

import (
	"sort"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	turns := make([]model.Turn, len(c.Turns))
	copy(turns, c.Turns)
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Position < turns[j].Position
	})

	conversation := make([]*entity.Turn, 0, len(turns))
	for i := range turns {
		conversation = append(conversation, m.TurnToEntity(&turns[i]))
	}

	return &entity.Chat{
		Id:           c.Id,
		Name:         c.Name,
		CategoryId:   c.CategoryId,
		Conversation: conversation,
		Timestamp:    c.Timestamp,
	}
}

// ToModel maps the chat row only; turns are written separately because they
// are append-only.
func (m *ChatMapper) ToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}
	categoryId := c.CategoryId
	if categoryId == "" {
		categoryId = entity.UncategorizedId
	}
	return &model.Chat{
		Id:         c.Id,
		Name:       c.Name,
		CategoryId: categoryId,
		Timestamp:  c.Timestamp,
	}
}

func (m *ChatMapper) TurnToEntity(t *model.Turn) *entity.Turn {
	return &entity.Turn{
		Position:  t.Position,
		Timestamp: t.Timestamp,
		Question:  t.Question,
		Response:  t.Response,
		HasImage:  t.HasImage,
		ImageData: t.ImageData,
	}
}

func (m *ChatMapper) TurnToModel(chatId string, t *entity.Turn) *model.Turn {
	return &model.Turn{
		ChatId:    chatId,
		Position:  t.Position,
		Timestamp: t.Timestamp,
		Question:  t.Question,
		Response:  t.Response,
		HasImage:  t.HasImage,
		ImageData: t.ImageData,
	}
}
