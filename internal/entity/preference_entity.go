package entity

import "time"

const (
	PromptHistoryLimit     = 50
	PromptHistoryMinLength = 3
)

type PromptEntry struct {
	Text     string
	Position int64
	UsedAt   time.Time
}

type Preferences struct {
	ButtonSize            string `json:"button_size"`
	TextSize              string `json:"text_size"`
	SelectedPersonalityId string `json:"selected_personality_id"`
}

func DefaultPreferences() *Preferences {
	return &Preferences{
		ButtonSize:            "medium",
		TextSize:              "medium",
		SelectedPersonalityId: DefaultPersonalityId,
	}
}

// ViewState is per-client presentation state. It is never part of a backup.
type ViewState struct {
	ClientId               string   `json:"client_id"`
	Mode                   string   `json:"mode"`
	ExpandedCategories     []string `json:"expanded_categories"`
	ExpandedNoteCategories []string `json:"expanded_note_categories"`
}
