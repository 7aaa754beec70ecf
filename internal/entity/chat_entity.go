package entity

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	UncategorizedId   = "uncategorized"
	UncategorizedName = "Uncategorized"

	// AttachmentPlaceholder replaces image payloads that were left out of a backup.
	AttachmentPlaceholder = "[attachment omitted]"

	chatTitleMaxRunes = 50
)

type Chat struct {
	Id           string
	Name         *string
	CategoryId   string
	Conversation []*Turn
	Timestamp    time.Time
}

// Turn is one question/response exchange. Turns are never edited after append.
type Turn struct {
	Position  int
	Timestamp time.Time
	Question  string
	Response  string
	HasImage  bool
	ImageData *string
}

// Title is the display name: the explicit name when set, otherwise the first
// question truncated.
func (c *Chat) Title() string {
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		return *c.Name
	}
	if len(c.Conversation) == 0 {
		return "New chat"
	}
	return TruncateRunes(c.Conversation[0].Question, chatTitleMaxRunes)
}

// TitleSource is the untruncated text Title is derived from. It is empty
// for an unnamed chat with no turns.
func (c *Chat) TitleSource() string {
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		return *c.Name
	}
	if len(c.Conversation) == 0 {
		return ""
	}
	return c.Conversation[0].Question
}

// TurnsByRecency returns the turns ordered by their own timestamp, newest first.
// The stored conversation keeps insertion order.
func (c *Chat) TurnsByRecency() []*Turn {
	turns := make([]*Turn, len(c.Conversation))
	copy(turns, c.Conversation)
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Timestamp.After(turns[j].Timestamp)
	})
	return turns
}

func TruncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
