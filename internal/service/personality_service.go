package service

import (
	"context"
	"sort"
	"strings"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/specification"
	"offline-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPersonalityService interface {
	List(ctx context.Context) (*dto.PersonalityListResponse, error)
	Create(ctx context.Context, req *dto.CreatePersonalityRequest) (*dto.PersonalityResponse, error)
	Update(ctx context.Context, req *dto.UpdatePersonalityRequest) (*dto.PersonalityResponse, error)
	Delete(ctx context.Context, id string) error
	Select(ctx context.Context, id string) (*dto.PersonalityResponse, error)
	// ResolveSystemPrompt returns the prompt for id, or for the current
	// selection when id is empty. Unknown ids fall back to the default.
	ResolveSystemPrompt(ctx context.Context, id string) (*dto.ResolvedPromptResponse, error)
}

type personalityService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPersonalityService(uowFactory unitofwork.RepositoryFactory) IPersonalityService {
	return &personalityService{uowFactory: uowFactory}
}

func toPersonalityResponse(p *entity.Personality) *dto.PersonalityResponse {
	return &dto.PersonalityResponse{
		Id:        p.Id,
		Name:      p.Name,
		Details:   p.Details,
		IsDefault: p.IsDefault,
	}
}

func isDefaultPersonality(p *entity.Personality) bool {
	return p.IsDefault || p.Id == entity.DefaultPersonalityId
}

func (c *personalityService) List(ctx context.Context) (*dto.PersonalityListResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	personalities, err := uow.PersonalityRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := loadPreferences(ctx, uow.DocumentRepository())
	if err != nil {
		return nil, err
	}

	sort.SliceStable(personalities, func(i, j int) bool {
		a, b := personalities[i], personalities[j]
		if isDefaultPersonality(a) != isDefaultPersonality(b) {
			return isDefaultPersonality(a)
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	result := &dto.PersonalityListResponse{
		Personalities: make([]*dto.PersonalityResponse, 0, len(personalities)),
		SelectedId:    prefs.SelectedPersonalityId,
	}
	for _, p := range personalities {
		result.Personalities = append(result.Personalities, toPersonalityResponse(p))
	}
	return result, nil
}

func (c *personalityService) Create(ctx context.Context, req *dto.CreatePersonalityRequest) (*dto.PersonalityResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name", "personality name is required")
	}
	if strings.TrimSpace(req.Details) == "" {
		return nil, apperror.Validation("details", "personality details are required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.PersonalityRepository()
	existing, err := repo.FindOne(ctx, specification.ByNameInsensitive{Name: name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &apperror.DuplicateNameError{Entity: "personality", Name: name}
	}

	personality := &entity.Personality{
		Id:      uuid.New().String(),
		Name:    name,
		Details: req.Details,
	}
	if err := repo.Create(ctx, personality); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toPersonalityResponse(personality), nil
}

func (c *personalityService) Update(ctx context.Context, req *dto.UpdatePersonalityRequest) (*dto.PersonalityResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name", "personality name is required")
	}
	if strings.TrimSpace(req.Details) == "" {
		return nil, apperror.Validation("details", "personality details are required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.PersonalityRepository()
	personality, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if personality == nil {
		return nil, apperror.NotFound("personality", req.Id)
	}
	if isDefaultPersonality(personality) {
		return nil, &apperror.ProtectedEntityError{Entity: "personality", Id: personality.Id}
	}

	clash, err := repo.FindOne(ctx,
		specification.ByNameInsensitive{Name: name},
		specification.ExcludeID{ID: personality.Id},
	)
	if err != nil {
		return nil, err
	}
	if clash != nil {
		return nil, &apperror.DuplicateNameError{Entity: "personality", Name: name}
	}

	personality.Name = name
	personality.Details = req.Details
	if err := repo.Update(ctx, personality); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toPersonalityResponse(personality), nil
}

// Delete removes a personality. When it was selected, the selection moves to
// the default in the same transaction.
func (c *personalityService) Delete(ctx context.Context, id string) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.PersonalityRepository()
	personality, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if personality == nil {
		return apperror.NotFound("personality", id)
	}
	if isDefaultPersonality(personality) {
		return &apperror.ProtectedEntityError{Entity: "personality", Id: id}
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	docs := uow.DocumentRepository()
	prefs, err := loadPreferences(ctx, docs)
	if err != nil {
		return err
	}
	if prefs.SelectedPersonalityId == id {
		prefs.SelectedPersonalityId = entity.DefaultPersonalityId
		if err := docs.Put(ctx, PreferencesDocumentKey, prefs); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func (c *personalityService) Select(ctx context.Context, id string) (*dto.PersonalityResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	personality, err := uow.PersonalityRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if personality == nil {
		return nil, apperror.NotFound("personality", id)
	}

	docs := uow.DocumentRepository()
	prefs, err := loadPreferences(ctx, docs)
	if err != nil {
		return nil, err
	}
	prefs.SelectedPersonalityId = personality.Id
	if err := docs.Put(ctx, PreferencesDocumentKey, prefs); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toPersonalityResponse(personality), nil
}

func (c *personalityService) ResolveSystemPrompt(ctx context.Context, id string) (*dto.ResolvedPromptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PersonalityRepository()

	if id == "" {
		prefs, err := loadPreferences(ctx, uow.DocumentRepository())
		if err != nil {
			return nil, err
		}
		id = prefs.SelectedPersonalityId
	}

	personality, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if personality == nil {
		personality, err = repo.FindOne(ctx, specification.ByID{ID: entity.DefaultPersonalityId})
		if err != nil {
			return nil, err
		}
	}
	if personality == nil {
		personality = entity.DefaultPersonality()
	}

	return &dto.ResolvedPromptResponse{
		PersonalityId: personality.Id,
		SystemPrompt:  personality.Details,
	}, nil
}
