package mapper

import (
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/model"
)

type CategoryMapper struct {
	kind entity.CategoryKind
}

func NewCategoryMapper(kind entity.CategoryKind) *CategoryMapper {
	return &CategoryMapper{kind: kind}
}

func (m *CategoryMapper) ToEntity(c *model.Category) *entity.Category {
	if c == nil {
		return nil
	}
	return &entity.Category{
		Id:   c.Id,
		Name: c.Name,
		Kind: m.kind,
	}
}

func (m *CategoryMapper) ToModel(c *entity.Category) *model.Category {
	if c == nil {
		return nil
	}
	return &model.Category{
		Id:      c.Id,
		Name:    c.Name,
		NameKey: entity.NameKey(c.Name),
	}
}
