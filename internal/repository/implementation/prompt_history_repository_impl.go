package implementation

import (
	"context"
	"errors"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/model"
	"offline-chat-be/internal/repository/contract"
	"offline-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type PromptHistoryRepositoryImpl struct {
	db *gorm.DB
}

func NewPromptHistoryRepository(db *gorm.DB) contract.PromptHistoryRepository {
	return &PromptHistoryRepositoryImpl{db: db}
}

func (r *PromptHistoryRepositoryImpl) nextPosition(db *gorm.DB) (int64, error) {
	var last int64
	err := db.Model(&model.PromptHistory{}).
		Select("COALESCE(MAX(position), 0)").
		Scan(&last).Error
	return last + 1, err
}

func (r *PromptHistoryRepositoryImpl) Touch(ctx context.Context, entry *entity.PromptEntry) error {
	db := r.db.WithContext(ctx)

	position, err := r.nextPosition(db)
	if err != nil {
		return err
	}
	entry.Position = position

	var existing model.PromptHistory
	err = specification.ByText{Text: entry.Text}.Apply(db).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&model.PromptHistory{
			Text:     entry.Text,
			Position: entry.Position,
			UsedAt:   entry.UsedAt,
		}).Error
	case err != nil:
		return err
	}

	return db.Model(&existing).Updates(map[string]interface{}{
		"position": entry.Position,
		"used_at":  entry.UsedAt,
	}).Error
}

func (r *PromptHistoryRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.PromptEntry, error) {
	var models []*model.PromptHistory
	query := specification.OrderBy{Field: "position", Desc: true}.Apply(r.db.WithContext(ctx))
	if limit > 0 {
		query = specification.Pagination{Limit: limit}.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]*entity.PromptEntry, len(models))
	for i, m := range models {
		entries[i] = &entity.PromptEntry{
			Text:     m.Text,
			Position: m.Position,
			UsedAt:   m.UsedAt,
		}
	}
	return entries, nil
}

func (r *PromptHistoryRepositoryImpl) Trim(ctx context.Context, keep int) error {
	db := r.db.WithContext(ctx)

	var cutoff []int64
	if err := db.Model(&model.PromptHistory{}).
		Order("position DESC").
		Offset(keep).
		Limit(1).
		Pluck("position", &cutoff).Error; err != nil {
		return err
	}
	if len(cutoff) == 0 {
		return nil
	}
	return db.Where("position <= ?", cutoff[0]).Delete(&model.PromptHistory{}).Error
}

func (r *PromptHistoryRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.PromptHistory{}).Error
}
