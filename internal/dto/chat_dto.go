package dto

import "time"

type TurnResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	HasImage  bool      `json:"has_image"`
	ImageData *string   `json:"image_data"`
}

type ChatResponse struct {
	Id           string          `json:"id"`
	Name         *string         `json:"name,omitempty"`
	Title        string          `json:"title"`
	CategoryId   string          `json:"category_id"`
	Conversation []*TurnResponse `json:"conversation"`
	Timestamp    time.Time       `json:"timestamp"`
}

type ChatListResponse struct {
	Chats []*ChatResponse `json:"chats"`
}

type ShowChatResponse struct {
	Chat *ChatResponse `json:"chat"`
}

// Turn orders accepted by GET /chats/:id?order=. Insertion order is the
// stored order; recent puts the newest turn first.
const (
	TurnOrderInsertion = "insertion"
	TurnOrderRecent    = "recent"
)

// UpdateChatRequest is the older PUT /chats/:id form of a rename.
type UpdateChatRequest struct {
	Id    string `json:"-" form:"-"`
	Title string `json:"title" form:"title" validate:"required"`
}

type RenameChatRequest struct {
	Id      string `json:"-" form:"-"`
	NewName string `json:"new_name" form:"new_name" validate:"required"`
}

type MoveChatRequest struct {
	Id         string `json:"-" form:"-"`
	CategoryId string `json:"category_id" form:"category_id" validate:"required"`
}

type ClearAllResponse struct {
	Message      string `json:"message"`
	ChatsRemoved int64  `json:"chats_removed"`
}
