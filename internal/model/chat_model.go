package model

import "time"

type Chat struct {
	Id         string    `gorm:"type:varchar(64);primaryKey"`
	Name       *string   `gorm:"type:varchar(255)"`
	CategoryId string    `gorm:"type:varchar(64);not null;index;default:uncategorized"`
	Timestamp  time.Time `gorm:"column:last_active_at;not null;index"`
	Turns      []Turn    `gorm:"foreignKey:ChatId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Chat) TableName() string {
	return "chats"
}

// Turn rows are append-only. Position is the insertion ordinal inside its chat.
type Turn struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	ChatId    string    `gorm:"type:varchar(64);not null;index:idx_turn_chat_position,priority:1"`
	Position  int       `gorm:"not null;index:idx_turn_chat_position,priority:2"`
	Timestamp time.Time `gorm:"column:asked_at;not null"`
	Question  string    `gorm:"type:text"`
	Response  string    `gorm:"type:text"`
	HasImage  bool      `gorm:"not null;default:false"`
	ImageData *string   `gorm:"type:text"`
}

func (Turn) TableName() string {
	return "chat_turns"
}
