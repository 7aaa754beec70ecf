package entity

import "time"

// Note references its category by name, not id. Renaming a note category
// rewrites this field on every member note.
type Note struct {
	Id        string
	Title     string
	Content   string
	Category  string
	CreatedAt time.Time
	Timestamp time.Time
}
