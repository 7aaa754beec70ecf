package dto

import (
	"encoding/json"
	"time"
)

const BackupVersion = "2.0"

// BackupDocument is the single-file export. Structure maps a logical path to
// the JSON text of one collection.
type BackupDocument struct {
	README    string            `json:"README"`
	Structure map[string]string `json:"structure"`
	Metadata  BackupMetadata    `json:"metadata"`
}

type BackupMetadata struct {
	ExportedAt time.Time      `json:"exported_at"`
	Version    string         `json:"version"`
	Counts     map[string]int `json:"counts"`
}

// LegacyBackupDocument is the flat shape written by older clients.
type LegacyBackupDocument struct {
	Chats          json.RawMessage `json:"chats"`
	Categories     json.RawMessage `json:"categories"`
	Notes          json.RawMessage `json:"notes"`
	NoteCategories json.RawMessage `json:"noteCategories"`
	Personalities  json.RawMessage `json:"personalities"`
	Preferences    json.RawMessage `json:"preferences"`
	PromptHistory  json.RawMessage `json:"promptHistory"`
}

type BackupChat struct {
	Id           string        `json:"id"`
	Name         *string       `json:"name,omitempty"`
	CategoryId   string        `json:"category_id"`
	Conversation []*BackupTurn `json:"conversation"`
	Timestamp    time.Time     `json:"timestamp"`

	// Single-exchange chats from before conversations were kept. Read on
	// restore only.
	Question *string `json:"question,omitempty"`
	Response *string `json:"response,omitempty"`
	HasImage bool    `json:"has_image,omitempty"`
}

type BackupTurn struct {
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	HasImage  bool      `json:"has_image"`
	ImageData *string   `json:"image_data"`
}

type BackupCategory struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type BackupNote struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Timestamp time.Time `json:"timestamp"`
}

type BackupPersonality struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	IsDefault bool   `json:"isDefault"`
}

type BackupPreferences struct {
	ButtonSize            string `json:"button_size"`
	TextSize              string `json:"text_size"`
	SelectedPersonalityId string `json:"selected_personality_id"`
}

type RestoreResponse struct {
	Message  string         `json:"message"`
	Restored map[string]int `json:"restored"`
}
