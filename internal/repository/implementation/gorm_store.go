package implementation

import (
	"context"
	"errors"

	"offline-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type rowMapper[M any, E any] interface {
	ToEntity(row *M) *E
	ToModel(e *E) *M
}

// gormStore is the CRUD shared by the table-backed repositories. table
// overrides the model's own table name; preload decorates read queries only.
type gormStore[M any, E any] struct {
	db      *gorm.DB
	table   string
	mapper  rowMapper[M, E]
	preload func(*gorm.DB) *gorm.DB
}

func (s gormStore[M, E]) scoped(ctx context.Context, specs ...specification.Specification) *gorm.DB {
	db := s.db.WithContext(ctx)
	if s.table != "" {
		db = db.Table(s.table)
	}
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (s gormStore[M, E]) read(ctx context.Context, specs ...specification.Specification) *gorm.DB {
	db := s.scoped(ctx, specs...)
	if s.preload != nil {
		db = s.preload(db)
	}
	return db
}

func (s gormStore[M, E]) Create(ctx context.Context, e *E) error {
	row := s.mapper.ToModel(e)
	if err := s.scoped(ctx).Create(row).Error; err != nil {
		return err
	}
	*e = *s.mapper.ToEntity(row)
	return nil
}

// Update writes every column, so cleared fields stay cleared.
func (s gormStore[M, E]) Update(ctx context.Context, e *E) error {
	row := s.mapper.ToModel(e)
	if err := s.scoped(ctx).Save(row).Error; err != nil {
		return err
	}
	*e = *s.mapper.ToEntity(row)
	return nil
}

func (s gormStore[M, E]) Delete(ctx context.Context, id string) error {
	return s.scoped(ctx).Where("id = ?", id).Delete(new(M)).Error
}

func (s gormStore[M, E]) DeleteAll(ctx context.Context) error {
	return s.scoped(ctx).Where("1 = 1").Delete(new(M)).Error
}

// FindOne returns nil without error when nothing matches.
func (s gormStore[M, E]) FindOne(ctx context.Context, specs ...specification.Specification) (*E, error) {
	var row M
	if err := s.read(ctx, specs...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.mapper.ToEntity(&row), nil
}

func (s gormStore[M, E]) FindAll(ctx context.Context, specs ...specification.Specification) ([]*E, error) {
	var rows []*M
	if err := s.read(ctx, specs...).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*E, len(rows))
	for i, row := range rows {
		result[i] = s.mapper.ToEntity(row)
	}
	return result, nil
}

func (s gormStore[M, E]) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	if err := s.scoped(ctx, specs...).Model(new(M)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
