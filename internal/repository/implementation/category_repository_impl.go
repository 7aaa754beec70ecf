package implementation

import (
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/mapper"
	"offline-chat-be/internal/model"
	"offline-chat-be/internal/repository/contract"

	"gorm.io/gorm"
)

// CategoryRepositoryImpl serves one kind. Both kinds share model.Category and
// differ only by table.
type CategoryRepositoryImpl struct {
	gormStore[model.Category, entity.Category]
	kind entity.CategoryKind
}

func categoryTable(kind entity.CategoryKind) string {
	if kind == entity.CategoryKindNote {
		return model.NoteCategoryTable
	}
	return model.ChatCategoryTable
}

func NewCategoryRepository(db *gorm.DB, kind entity.CategoryKind) contract.CategoryRepository {
	return &CategoryRepositoryImpl{
		gormStore: gormStore[model.Category, entity.Category]{
			db:     db,
			table:  categoryTable(kind),
			mapper: mapper.NewCategoryMapper(kind),
		},
		kind: kind,
	}
}

func (r *CategoryRepositoryImpl) Kind() entity.CategoryKind {
	return r.kind
}
