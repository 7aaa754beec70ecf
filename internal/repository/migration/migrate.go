package migration

import (
	"fmt"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/model"
	"offline-chat-be/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate brings the schema up to date and seeds the rows that must always
// exist. It is idempotent.
func Migrate(db *gorm.DB) error {
	err := database.AutoMigrate(db, model.AllModels(),
		database.TableModel{Table: model.ChatCategoryTable, Model: &model.Category{}},
		database.TableModel{Table: model.NoteCategoryTable, Model: &model.Category{}},
	)
	if err != nil {
		return err
	}
	for _, table := range []string{model.ChatCategoryTable, model.NoteCategoryTable, model.Personality{}.TableName()} {
		if err := indexNameKeys(db, table); err != nil {
			return err
		}
	}
	return Seed(db)
}

// indexNameKeys fills name_key for rows written before the column existed and
// puts the unique index on it.
func indexNameKeys(db *gorm.DB, table string) error {
	var rows []struct {
		Id   string
		Name string
	}
	if err := db.Table(table).Select("id", "name").Where("name_key = ?", "").Find(&rows).Error; err != nil {
		return fmt.Errorf("backfill %s: %w", table, err)
	}
	for _, row := range rows {
		if err := db.Table(table).Where("id = ?", row.Id).Update("name_key", entity.NameKey(row.Name)).Error; err != nil {
			return fmt.Errorf("backfill %s: %w", table, err)
		}
	}

	stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_name_key ON %s (name_key)", table, table)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("index %s.name_key: %w", table, err)
	}
	return nil
}

// Seed inserts the uncategorized buckets and the default personality when
// they are missing. Existing rows are left alone.
func Seed(db *gorm.DB) error {
	for _, table := range []string{model.ChatCategoryTable, model.NoteCategoryTable} {
		row := &model.Category{
			Id:      entity.UncategorizedId,
			Name:    entity.UncategorizedName,
			NameKey: entity.NameKey(entity.UncategorizedName),
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Table(table).Create(row).Error; err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
	}

	def := entity.DefaultPersonality()
	row := &model.Personality{
		Id:        def.Id,
		Name:      def.Name,
		NameKey:   entity.NameKey(def.Name),
		Details:   def.Details,
		IsDefault: true,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return fmt.Errorf("seed personalities: %w", err)
	}
	return nil
}
