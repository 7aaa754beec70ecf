package contract

import (
	"context"

	"offline-chat-be/internal/entity"
)

type PromptHistoryRepository interface {
	// Touch inserts text or moves an existing entry to the front.
	Touch(ctx context.Context, entry *entity.PromptEntry) error
	// FindRecent returns at most limit entries, most recent first.
	FindRecent(ctx context.Context, limit int) ([]*entity.PromptEntry, error)
	// Trim keeps only the keep most recent entries.
	Trim(ctx context.Context, keep int) error
	DeleteAll(ctx context.Context) error
}
