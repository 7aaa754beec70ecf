package service

import (
	"context"
	"strings"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/contract"
)

const defaultViewMode = "chats"

type IViewStateService interface {
	Get(ctx context.Context, clientId string) (*dto.ViewStateResponse, error)
	Save(ctx context.Context, req *dto.ViewStateRequest) (*dto.ViewStateResponse, error)
}

type viewStateService struct {
	repo contract.ViewStateRepository
}

func NewViewStateService(repo contract.ViewStateRepository) IViewStateService {
	return &viewStateService{repo: repo}
}

func toViewStateResponse(s *entity.ViewState) *dto.ViewStateResponse {
	return &dto.ViewStateResponse{
		ClientId:               s.ClientId,
		Mode:                   s.Mode,
		ExpandedCategories:     nonNil(s.ExpandedCategories),
		ExpandedNoteCategories: nonNil(s.ExpandedNoteCategories),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Get returns an empty state for a client that never saved one.
func (c *viewStateService) Get(ctx context.Context, clientId string) (*dto.ViewStateResponse, error) {
	clientId = strings.TrimSpace(clientId)
	if clientId == "" {
		return nil, apperror.Validation("client_id", "client id is required")
	}

	state, err := c.repo.Get(ctx, clientId)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &entity.ViewState{ClientId: clientId, Mode: defaultViewMode}
	}
	return toViewStateResponse(state), nil
}

func (c *viewStateService) Save(ctx context.Context, req *dto.ViewStateRequest) (*dto.ViewStateResponse, error) {
	clientId := strings.TrimSpace(req.ClientId)
	if clientId == "" {
		return nil, apperror.Validation("client_id", "client id is required")
	}

	mode := req.Mode
	if mode == "" {
		mode = defaultViewMode
	}

	state := &entity.ViewState{
		ClientId:               clientId,
		Mode:                   mode,
		ExpandedCategories:     req.ExpandedCategories,
		ExpandedNoteCategories: req.ExpandedNoteCategories,
	}
	if err := c.repo.Save(ctx, state); err != nil {
		return nil, err
	}
	return toViewStateResponse(state), nil
}
