package dto

type PersonalityResponse struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	IsDefault bool   `json:"isDefault"`
}

type PersonalityListResponse struct {
	Personalities []*PersonalityResponse `json:"personalities"`
	SelectedId    string                 `json:"selected_id"`
}

type CreatePersonalityRequest struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Details string `json:"details" form:"details" validate:"required"`
}

type UpdatePersonalityRequest struct {
	Id      string `json:"-" form:"-"`
	Name    string `json:"name" form:"name" validate:"required"`
	Details string `json:"details" form:"details" validate:"required"`
}

type SelectPersonalityRequest struct {
	Id string `json:"id" form:"id" validate:"required"`
}

type ResolvedPromptResponse struct {
	PersonalityId string `json:"personality_id"`
	SystemPrompt  string `json:"system_prompt"`
}
