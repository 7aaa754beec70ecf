package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Legacy flat documents name their collections with these top-level keys.
var legacyKeys = map[string]string{
	"chats":          PathChats,
	"categories":     PathChatCategories,
	"notes":          PathNotes,
	"noteCategories": PathNoteCategories,
	"personalities":  PathPersonalities,
	"preferences":    PathPreferences,
	"promptHistory":  PathPromptHistory,
}

func formatError(message string, err error) error {
	return &apperror.RestoreFormatError{Message: message, Err: err}
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseBackup decodes a structured or legacy document into a restoreSet
// without touching any store.
func parseBackup(raw []byte) (*restoreSet, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, formatError("document is not a JSON object", err)
	}

	sections, err := collectSections(top)
	if err != nil {
		return nil, err
	}

	set := &restoreSet{}
	if data, ok := sections[PathChatCategories]; ok {
		if set.chatCategories, err = decodeCategories(data, entity.CategoryKindChat); err != nil {
			return nil, formatError(PathChatCategories, err)
		}
	}
	if data, ok := sections[PathNoteCategories]; ok {
		if set.noteCategories, err = decodeCategories(data, entity.CategoryKindNote); err != nil {
			return nil, formatError(PathNoteCategories, err)
		}
	}
	if data, ok := sections[PathChats]; ok {
		if set.chats, err = decodeChats(data); err != nil {
			return nil, formatError(PathChats, err)
		}
	}
	if data, ok := sections[PathNotes]; ok {
		if set.notes, err = decodeNotes(data); err != nil {
			return nil, formatError(PathNotes, err)
		}
	}
	if data, ok := sections[PathPersonalities]; ok {
		if set.personalities, err = decodePersonalities(data); err != nil {
			return nil, formatError(PathPersonalities, err)
		}
	}
	if data, ok := sections[PathPreferences]; ok {
		if set.preferences, err = decodePreferences(data); err != nil {
			return nil, formatError(PathPreferences, err)
		}
	}
	if data, ok := sections[PathPromptHistory]; ok {
		if set.promptHistory, err = decodePromptHistory(data); err != nil {
			return nil, formatError(PathPromptHistory, err)
		}
	}

	if set.empty() {
		return nil, formatError("no restorable collections found", nil)
	}
	return set, nil
}

// collectSections maps every present collection to its raw JSON, keyed by the
// structured path.
func collectSections(top map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	sections := make(map[string]json.RawMessage)

	if rawStructure, ok := top["structure"]; ok && !isAbsent(rawStructure) {
		var structure map[string]json.RawMessage
		if err := json.Unmarshal(rawStructure, &structure); err != nil {
			return nil, formatError("structure must be an object", err)
		}
		for path, value := range structure {
			if isAbsent(value) {
				continue
			}
			// Collections are normally stored as JSON text; embedded objects are
			// accepted as well.
			if bytes.HasPrefix(bytes.TrimSpace(value), []byte(`"`)) {
				var text string
				if err := json.Unmarshal(value, &text); err != nil {
					return nil, formatError(path, err)
				}
				value = json.RawMessage(text)
			}
			sections[path] = value
		}
		return sections, nil
	}

	for key, path := range legacyKeys {
		if value, ok := top[key]; ok && !isAbsent(value) {
			sections[path] = value
		}
	}
	return sections, nil
}

// decodeList accepts a JSON array, or an object keyed by id. Keys are
// returned in sorted order alongside the items when the object form is used.
func decodeList[T any](raw json.RawMessage) ([]T, []string, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil, nil
	}

	var keyed map[string]T
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, nil, fmt.Errorf("expected a list or an object keyed by id: %w", err)
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items = make([]T, 0, len(keys))
	for _, k := range keys {
		items = append(items, keyed[k])
	}
	return items, keys, nil
}

func keyAt(keys []string, i int) string {
	if keys == nil {
		return ""
	}
	return keys[i]
}

func checkUnique(seen map[string]bool, id string) error {
	if id == "" {
		return fmt.Errorf("entry without id")
	}
	if seen[id] {
		return fmt.Errorf("duplicate id %q", id)
	}
	seen[id] = true
	return nil
}

// decodeCategories accepts category objects or bare names.
func decodeCategories(raw json.RawMessage, kind entity.CategoryKind) ([]*entity.Category, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		result := make([]*entity.Category, 0, len(names))
		seen := make(map[string]bool)
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("empty category name")
			}
			if seen[entity.NameKey(name)] {
				continue
			}
			seen[entity.NameKey(name)] = true

			id := uuid.New().String()
			if strings.EqualFold(name, entity.UncategorizedName) {
				id, name = entity.UncategorizedId, entity.UncategorizedName
			}
			result = append(result, &entity.Category{Id: id, Name: name, Kind: kind})
		}
		return result, nil
	}

	items, keys, err := decodeList[dto.BackupCategory](raw)
	if err != nil {
		return nil, err
	}
	result := make([]*entity.Category, 0, len(items))
	seenIds := make(map[string]bool)
	seenNames := make(map[string]bool)
	for i, item := range items {
		if item.Id == "" {
			item.Id = keyAt(keys, i)
		}
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("category %q has no name", item.Id)
		}
		if err := checkUnique(seenIds, item.Id); err != nil {
			return nil, err
		}
		if seenNames[entity.NameKey(name)] {
			return nil, fmt.Errorf("duplicate category name %q", name)
		}
		seenNames[entity.NameKey(name)] = true
		result = append(result, &entity.Category{Id: item.Id, Name: name, Kind: kind})
	}
	return result, nil
}

func decodeChats(raw json.RawMessage) ([]*entity.Chat, error) {
	items, keys, err := decodeList[dto.BackupChat](raw)
	if err != nil {
		return nil, err
	}

	result := make([]*entity.Chat, 0, len(items))
	seen := make(map[string]bool)
	for i, item := range items {
		if item.Id == "" {
			item.Id = keyAt(keys, i)
		}
		if err := checkUnique(seen, item.Id); err != nil {
			return nil, err
		}

		chat := &entity.Chat{
			Id:         item.Id,
			Name:       item.Name,
			CategoryId: item.CategoryId,
			Timestamp:  item.Timestamp,
		}
		if chat.CategoryId == "" {
			chat.CategoryId = entity.UncategorizedId
		}

		if item.Conversation == nil && item.Question != nil && item.Response != nil {
			item.Conversation = []*dto.BackupTurn{{
				Timestamp: item.Timestamp,
				Question:  *item.Question,
				Response:  *item.Response,
				HasImage:  item.HasImage,
			}}
		}

		var latest time.Time
		for pos, t := range item.Conversation {
			if t == nil {
				continue
			}
			chat.Conversation = append(chat.Conversation, &entity.Turn{
				Position:  pos + 1,
				Timestamp: t.Timestamp,
				Question:  t.Question,
				Response:  t.Response,
				HasImage:  t.HasImage || t.ImageData != nil,
				ImageData: attachmentMarker(t.ImageData),
			})
			if t.Timestamp.After(latest) {
				latest = t.Timestamp
			}
		}
		if chat.Timestamp.IsZero() {
			chat.Timestamp = latest
		}
		result = append(result, chat)
	}
	return result, nil
}

func decodeNotes(raw json.RawMessage) ([]*entity.Note, error) {
	items, keys, err := decodeList[dto.BackupNote](raw)
	if err != nil {
		return nil, err
	}

	result := make([]*entity.Note, 0, len(items))
	seen := make(map[string]bool)
	for i, item := range items {
		if item.Id == "" {
			item.Id = keyAt(keys, i)
		}
		if err := checkUnique(seen, item.Id); err != nil {
			return nil, err
		}

		note := &entity.Note{
			Id:        item.Id,
			Title:     item.Title,
			Content:   item.Content,
			Category:  strings.TrimSpace(item.Category),
			CreatedAt: item.CreatedAt,
			Timestamp: item.Timestamp,
		}
		if note.Category == "" {
			note.Category = entity.UncategorizedName
		}
		if note.Timestamp.IsZero() {
			note.Timestamp = note.CreatedAt
		}
		if note.CreatedAt.IsZero() {
			note.CreatedAt = note.Timestamp
		}
		result = append(result, note)
	}
	return result, nil
}

func decodePersonalities(raw json.RawMessage) ([]*entity.Personality, error) {
	items, keys, err := decodeList[dto.BackupPersonality](raw)
	if err != nil {
		return nil, err
	}

	result := make([]*entity.Personality, 0, len(items))
	seen := make(map[string]bool)
	names := make(map[string]string)
	for i, item := range items {
		if item.Id == "" {
			item.Id = keyAt(keys, i)
		}
		if err := checkUnique(seen, item.Id); err != nil {
			return nil, err
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("personality %q has no name", item.Id)
		}
		if _, dup := names[entity.NameKey(item.Name)]; dup {
			return nil, fmt.Errorf("duplicate personality name %q", strings.TrimSpace(item.Name))
		}
		names[entity.NameKey(item.Name)] = item.Id
		result = append(result, &entity.Personality{
			Id:        item.Id,
			Name:      strings.TrimSpace(item.Name),
			Details:   item.Details,
			IsDefault: item.Id == entity.DefaultPersonalityId,
		})
	}
	// The default is reinserted when missing, so its name must stay free.
	if id, taken := names[entity.NameKey(entity.DefaultPersonalityName)]; taken && !seen[entity.DefaultPersonalityId] {
		return nil, fmt.Errorf("personality %q uses the reserved name %q", id, entity.DefaultPersonalityName)
	}
	return result, nil
}

func decodePreferences(raw json.RawMessage) (*entity.Preferences, error) {
	var item dto.BackupPreferences
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}

	prefs := entity.DefaultPreferences()
	if item.ButtonSize != "" {
		prefs.ButtonSize = item.ButtonSize
	}
	if item.TextSize != "" {
		prefs.TextSize = item.TextSize
	}
	if item.SelectedPersonalityId != "" {
		prefs.SelectedPersonalityId = item.SelectedPersonalityId
	}
	return prefs, nil
}

// decodePromptHistory keeps the document order, most recent first, dropping
// blanks and repeats.
func decodePromptHistory(raw json.RawMessage) ([]string, error) {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(items))
	seen := make(map[string]bool)
	for _, text := range items {
		text = strings.TrimSpace(text)
		if len([]rune(text)) < entity.PromptHistoryMinLength || seen[text] {
			continue
		}
		seen[text] = true
		result = append(result, text)
	}
	if len(result) > entity.PromptHistoryLimit {
		result = result[:entity.PromptHistoryLimit]
	}
	return result, nil
}
