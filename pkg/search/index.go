// Package search runs case-insensitive substring queries over chats and notes
// and merges the hits into one list ordered by recency.
package search

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"offline-chat-be/internal/entity"
)

type Kind string

const (
	KindChat Kind = "chat"
	KindNote Kind = "note"

	snippetRadius = 40
)

// Field names the part of an item that matched first.
type Field string

const (
	FieldTitle    Field = "title"
	FieldQuestion Field = "question"
	FieldResponse Field = "response"
	FieldContent  Field = "content"
	FieldCategory Field = "category"
)

type Result struct {
	Kind      Kind      `json:"kind"`
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Snippet   string    `json:"snippet"`
	MatchedIn Field     `json:"matched_in"`
	Timestamp time.Time `json:"timestamp"`
}

// Index holds a snapshot of the searchable collections.
type Index struct {
	chats []*entity.Chat
	notes []*entity.Note
}

func NewIndex(chats []*entity.Chat, notes []*entity.Note) *Index {
	return &Index{chats: chats, notes: notes}
}

// Search returns nothing for a blank query. Results are ordered by the item's
// own timestamp, newest first; ties go chats before notes, then by id.
func (ix *Index) Search(query string) []Result {
	q := []rune(strings.TrimSpace(query))
	if len(q) == 0 {
		return []Result{}
	}
	for i, r := range q {
		q[i] = unicode.ToLower(r)
	}

	results := make([]Result, 0)
	for _, c := range ix.chats {
		if r, ok := matchChat(c, q); ok {
			results = append(results, r)
		}
	}
	for _, n := range ix.notes {
		if r, ok := matchNote(n, q); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Id < b.Id
	})
	return results
}

func matchChat(c *entity.Chat, q []rune) (Result, bool) {
	res := Result{
		Kind:      KindChat,
		Id:        c.Id,
		Title:     c.Title(),
		Category:  c.CategoryId,
		Timestamp: c.Timestamp,
	}

	if s, ok := excerpt(c.TitleSource(), q); ok {
		res.Snippet, res.MatchedIn = s, FieldTitle
		return res, true
	}
	for _, t := range c.Conversation {
		if s, ok := excerpt(t.Question, q); ok {
			res.Snippet, res.MatchedIn = s, FieldQuestion
			return res, true
		}
		if s, ok := excerpt(t.Response, q); ok {
			res.Snippet, res.MatchedIn = s, FieldResponse
			return res, true
		}
	}
	return res, false
}

func matchNote(n *entity.Note, q []rune) (Result, bool) {
	res := Result{
		Kind:      KindNote,
		Id:        n.Id,
		Title:     n.Title,
		Category:  n.Category,
		Timestamp: n.CreatedAt,
	}

	fields := []struct {
		field Field
		text  string
	}{
		{FieldTitle, n.Title},
		{FieldContent, n.Content},
		{FieldCategory, n.Category},
	}
	for _, f := range fields {
		if s, ok := excerpt(f.text, q); ok {
			res.Snippet, res.MatchedIn = s, f.field
			return res, true
		}
	}
	return res, false
}

// indexFold finds lowered query runes in text, comparing rune by rune so the
// returned offset is valid in the original text.
func indexFold(text []rune, q []rune) int {
	if len(q) > len(text) {
		return -1
	}
outer:
	for i := 0; i+len(q) <= len(text); i++ {
		for j, r := range q {
			if unicode.ToLower(text[i+j]) != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

func excerpt(text string, q []rune) (string, bool) {
	runes := []rune(text)
	at := indexFold(runes, q)
	if at < 0 {
		return "", false
	}

	start := at - snippetRadius
	prefix := "..."
	if start <= 0 {
		start, prefix = 0, ""
	}
	end := at + len(q) + snippetRadius
	suffix := "..."
	if end >= len(runes) {
		end, suffix = len(runes), ""
	}
	return prefix + string(runes[start:end]) + suffix, true
}
