package database

import (
	"fmt"

	"gorm.io/gorm"
)

// TableModel migrates a model into an explicitly named table, for models that
// back more than one table.
type TableModel struct {
	Table string
	Model interface{}
}

func AutoMigrate(db *gorm.DB, models []interface{}, tables ...TableModel) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, t := range tables {
		if err := db.Table(t.Table).AutoMigrate(t.Model); err != nil {
			return fmt.Errorf("auto migrate %s: %w", t.Table, err)
		}
	}
	return nil
}
