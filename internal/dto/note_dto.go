package dto

import "time"

type NoteResponse struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Timestamp time.Time `json:"timestamp"`
}

type NoteListResponse struct {
	Notes []*NoteResponse `json:"notes"`
}

type CreateNoteRequest struct {
	Title    string `json:"title" form:"title" validate:"required"`
	Content  string `json:"content" form:"content"`
	Category string `json:"category" form:"category"`
}

type UpdateNoteRequest struct {
	Id       string `json:"-" form:"-"`
	Title    string `json:"title" form:"title" validate:"required"`
	Content  string `json:"content" form:"content"`
	Category string `json:"category" form:"category"`
}

type MoveNoteRequest struct {
	Id       string `json:"-" form:"-"`
	Category string `json:"category" form:"category" validate:"required"`
}
