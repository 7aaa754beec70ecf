package model

import "time"

type Note struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Content   string    `gorm:"type:text"`
	Category  string    `gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
	Timestamp time.Time `gorm:"column:modified_at;not null"`
}

func (Note) TableName() string {
	return "notes"
}
