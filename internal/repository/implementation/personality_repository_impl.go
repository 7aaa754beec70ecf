package implementation

import (
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/mapper"
	"offline-chat-be/internal/model"
	"offline-chat-be/internal/repository/contract"

	"gorm.io/gorm"
)

type PersonalityRepositoryImpl struct {
	gormStore[model.Personality, entity.Personality]
}

func NewPersonalityRepository(db *gorm.DB) contract.PersonalityRepository {
	return &PersonalityRepositoryImpl{
		gormStore: gormStore[model.Personality, entity.Personality]{db: db, mapper: mapper.NewPersonalityMapper()},
	}
}
