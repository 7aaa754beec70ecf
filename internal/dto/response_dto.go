package dto

type MessageResponse struct {
	Message string `json:"message"`
}

type DeleteResponse struct {
	DeletedId string `json:"deleted_id"`
	Removed   int64  `json:"removed"`
}
