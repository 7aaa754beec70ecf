package dto

// AskRequest is bound from the multipart form. The image file itself is read
// from the form by the controller.
type AskRequest struct {
	Text         string `form:"text" json:"text" validate:"required"`
	SystemPrompt string `form:"system_prompt" json:"system_prompt"`
	ChatId       string `form:"chat_id" json:"chat_id"`
	ImageData    string `form:"image_data" json:"image_data"`

	Attachment *AskAttachment `form:"-" json:"-"`
}

type AskAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type AskResponse struct {
	Response     string          `json:"response"`
	ChatId       string          `json:"chat_id"`
	Conversation []*TurnResponse `json:"conversation"`
	Error        string          `json:"error,omitempty"`
	Stopped      bool            `json:"stopped,omitempty"`
	Performance  *Performance    `json:"performance,omitempty"`
}

type Performance struct {
	DurationSeconds float64 `json:"duration_seconds"`
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	DroppedMessages int     `json:"dropped_messages"`
}

type StopResponse struct {
	Message string `json:"message"`
	Stopped bool   `json:"stopped"`
}

// GenerationAnalysisMessage travels on the analysis topic after every
// completed generation.
type GenerationAnalysisMessage struct {
	RequestId       string  `json:"request_id"`
	ChatId          string  `json:"chat_id"`
	Model           string  `json:"model"`
	Outcome         string  `json:"outcome"`
	DurationSeconds float64 `json:"duration_seconds"`
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	DroppedMessages int     `json:"dropped_messages"`
	HasImage        bool    `json:"has_image"`
	SystemTruncated bool    `json:"system_truncated"`
	Error           string  `json:"error,omitempty"`
	OccurredAt      string  `json:"occurred_at"`
}

type AnalysisListResponse struct {
	Files   []string      `json:"files"`
	Entries []interface{} `json:"entries"`
}

type ClearAnalysisResponse struct {
	Message      string   `json:"message"`
	DeletedFiles []string `json:"deleted_files"`
	Count        int      `json:"count"`
}
