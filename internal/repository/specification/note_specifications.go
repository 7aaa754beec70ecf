package specification

import "gorm.io/gorm"

type ByCategoryName struct {
	Category string
}

func (s ByCategoryName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

type ByKey struct {
	Key string
}

func (s ByKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_key = ?", s.Key)
}

type ByText struct {
	Text string
}

func (s ByText) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("text = ?", s.Text)
}
