package model

// Category rows live in one table per kind; the repository picks the table
// by kind.
type Category struct {
	Id   string `gorm:"type:varchar(64);primaryKey"`
	Name string `gorm:"type:varchar(255);not null"`
	// NameKey is the folded name; a unique index is created per table.
	NameKey string `gorm:"type:varchar(255);not null;default:''"`
}

const (
	ChatCategoryTable = "chat_categories"
	NoteCategoryTable = "note_categories"
)

func (Category) TableName() string {
	return ChatCategoryTable
}
