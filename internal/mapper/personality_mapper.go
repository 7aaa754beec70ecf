package mapper

import (
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/model"
)

type PersonalityMapper struct{}

func NewPersonalityMapper() *PersonalityMapper {
	return &PersonalityMapper{}
}

func (m *PersonalityMapper) ToEntity(p *model.Personality) *entity.Personality {
	if p == nil {
		return nil
	}
	return &entity.Personality{
		Id:        p.Id,
		Name:      p.Name,
		Details:   p.Details,
		IsDefault: p.IsDefault,
	}
}

func (m *PersonalityMapper) ToModel(p *entity.Personality) *model.Personality {
	if p == nil {
		return nil
	}
	return &model.Personality{
		Id:        p.Id,
		Name:      p.Name,
		NameKey:   entity.NameKey(p.Name),
		Details:   p.Details,
		IsDefault: p.IsDefault,
	}
}
