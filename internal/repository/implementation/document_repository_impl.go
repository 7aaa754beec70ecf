package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"offline-chat-be/internal/model"
	"offline-chat-be/internal/repository/contract"
	"offline-chat-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var m model.Document
	query := specification.ByKey{Key: key}.Apply(r.db.WithContext(ctx))
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(m.Value, dest); err != nil {
		return true, fmt.Errorf("decode document %s: %w", key, err)
	}
	return true, nil
}

func (r *DocumentRepositoryImpl) Put(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}

	m := &model.Document{Key: key, Value: datatypes.JSON(raw)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(m).Error
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, key string) error {
	return specification.ByKey{Key: key}.Apply(r.db.WithContext(ctx)).Delete(&model.Document{}).Error
}
