package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/unitofwork"
)

type IPromptHistoryService interface {
	// Record moves text to the front of the history. Text shorter than the
	// minimum length after trimming is ignored.
	Record(ctx context.Context, text string) error
	List(ctx context.Context) (*dto.PromptHistoryResponse, error)
	Clear(ctx context.Context) error
}

type promptHistoryService struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

func NewPromptHistoryService(uowFactory unitofwork.RepositoryFactory) IPromptHistoryService {
	return &promptHistoryService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (c *promptHistoryService) Record(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < entity.PromptHistoryMinLength {
		return nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.PromptHistoryRepository()
	if err := repo.Touch(ctx, &entity.PromptEntry{Text: text, UsedAt: c.now()}); err != nil {
		return err
	}
	if err := repo.Trim(ctx, entity.PromptHistoryLimit); err != nil {
		return err
	}

	return uow.Commit()
}

func (c *promptHistoryService) List(ctx context.Context) (*dto.PromptHistoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	entries, err := uow.PromptHistoryRepository().FindRecent(ctx, entity.PromptHistoryLimit)
	if err != nil {
		return nil, err
	}

	prompts := make([]string, 0, len(entries))
	for _, e := range entries {
		prompts = append(prompts, e.Text)
	}
	return &dto.PromptHistoryResponse{Prompts: prompts}, nil
}

func (c *promptHistoryService) Clear(ctx context.Context) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	return uow.PromptHistoryRepository().DeleteAll(ctx)
}
