package model

import "time"

type PromptHistory struct {
	Id       uint      `gorm:"primaryKey;autoIncrement"`
	Text     string    `gorm:"type:text;not null;uniqueIndex"`
	Position int64     `gorm:"not null;index"`
	UsedAt   time.Time `gorm:"not null"`
}

func (PromptHistory) TableName() string {
	return "prompt_history"
}
