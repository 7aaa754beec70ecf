package unitofwork

import (
	"context"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatRepository() contract.ChatRepository
	CategoryRepository(kind entity.CategoryKind) contract.CategoryRepository
	NoteRepository() contract.NoteRepository
	PersonalityRepository() contract.PersonalityRepository
	PromptHistoryRepository() contract.PromptHistoryRepository
	DocumentRepository() contract.DocumentRepository
}
