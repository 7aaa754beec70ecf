package entity

import "strings"

// CategoryKind separates the chat and note namespaces. The same name may
// exist once in each.
type CategoryKind string

const (
	CategoryKindChat CategoryKind = "chat"
	CategoryKindNote CategoryKind = "note"
)

type Category struct {
	Id   string
	Name string
	Kind CategoryKind
}

// NameKey folds a category or personality name for uniqueness checks. Names
// that share a key collide.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Category) IsProtected() bool {
	return c.Id == UncategorizedId
}

func DefaultCategory(kind CategoryKind) *Category {
	return &Category{Id: UncategorizedId, Name: UncategorizedName, Kind: kind}
}
