package implementation

import (
	"context"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/mapper"
	"offline-chat-be/internal/model"
	"offline-chat-be/internal/repository/contract"

	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	gormStore[model.Note, entity.Note]
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		gormStore: gormStore[model.Note, entity.Note]{db: db, mapper: mapper.NewNoteMapper()},
	}
}

func (r *NoteRepositoryImpl) DeleteByCategory(ctx context.Context, category string) (int64, error) {
	result := r.scoped(ctx).Where("category = ?", category).Delete(&model.Note{})
	return result.RowsAffected, result.Error
}

// RenameCategory rewrites the denormalized category name on every member note.
func (r *NoteRepositoryImpl) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	result := r.scoped(ctx).
		Model(&model.Note{}).
		Where("category = ?", oldName).
		Update("category", newName)
	return result.RowsAffected, result.Error
}
