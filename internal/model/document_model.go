package model

import (
	"time"

	"gorm.io/datatypes"
)

// Document is a keyed JSON blob for small settings collections.
type Document struct {
	Key       string         `gorm:"column:doc_key;type:varchar(128);primaryKey"`
	Value     datatypes.JSON `gorm:"type:json"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

func AllModels() []interface{} {
	return []interface{}{
		&Chat{},
		&Turn{},
		&Note{},
		&Personality{},
		&PromptHistory{},
		&Document{},
	}
}
