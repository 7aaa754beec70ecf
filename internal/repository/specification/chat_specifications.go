package specification

import "gorm.io/gorm"

type ByCategoryID struct {
	CategoryID string
}

func (s ByCategoryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category_id = ?", s.CategoryID)
}

type ByChatID struct {
	ChatID string
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// MostRecentFirst is the canonical chat list order. Ties fall back to id so the
// listing is deterministic.
type MostRecentFirst struct{}

func (s MostRecentFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("last_active_at DESC").Order("id ASC")
}
