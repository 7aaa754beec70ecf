package dto

type PromptHistoryResponse struct {
	Prompts []string `json:"prompts"`
}

type RecordPromptRequest struct {
	Text string `json:"text" form:"text" validate:"required"`
}

type PreferencesResponse struct {
	ButtonSize            string `json:"button_size"`
	TextSize              string `json:"text_size"`
	SelectedPersonalityId string `json:"selected_personality_id"`
}

type UpdatePreferencesRequest struct {
	ButtonSize string `json:"button_size" form:"button_size" validate:"omitempty,oneof=small medium large"`
	TextSize   string `json:"text_size" form:"text_size" validate:"omitempty,oneof=small medium large"`
}

type ViewStateRequest struct {
	ClientId               string   `json:"client_id" validate:"required"`
	Mode                   string   `json:"mode"`
	ExpandedCategories     []string `json:"expanded_categories"`
	ExpandedNoteCategories []string `json:"expanded_note_categories"`
}

type ViewStateResponse struct {
	ClientId               string   `json:"client_id"`
	Mode                   string   `json:"mode"`
	ExpandedCategories     []string `json:"expanded_categories"`
	ExpandedNoteCategories []string `json:"expanded_note_categories"`
}
