package service

import (
	"context"

	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/contract"
	"offline-chat-be/internal/repository/unitofwork"
)

const PreferencesDocumentKey = "preferences"

type IPreferenceService interface {
	Get(ctx context.Context) (*dto.PreferencesResponse, error)
	Update(ctx context.Context, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)
}

type preferenceService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPreferenceService(uowFactory unitofwork.RepositoryFactory) IPreferenceService {
	return &preferenceService{uowFactory: uowFactory}
}

// loadPreferences fills unset fields with defaults.
func loadPreferences(ctx context.Context, docs contract.DocumentRepository) (*entity.Preferences, error) {
	prefs := entity.DefaultPreferences()
	if _, err := docs.Get(ctx, PreferencesDocumentKey, prefs); err != nil {
		return nil, err
	}

	def := entity.DefaultPreferences()
	if prefs.ButtonSize == "" {
		prefs.ButtonSize = def.ButtonSize
	}
	if prefs.TextSize == "" {
		prefs.TextSize = def.TextSize
	}
	if prefs.SelectedPersonalityId == "" {
		prefs.SelectedPersonalityId = def.SelectedPersonalityId
	}
	return prefs, nil
}

func toPreferencesResponse(p *entity.Preferences) *dto.PreferencesResponse {
	return &dto.PreferencesResponse{
		ButtonSize:            p.ButtonSize,
		TextSize:              p.TextSize,
		SelectedPersonalityId: p.SelectedPersonalityId,
	}
}

func (c *preferenceService) Get(ctx context.Context) (*dto.PreferencesResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	prefs, err := loadPreferences(ctx, uow.DocumentRepository())
	if err != nil {
		return nil, err
	}
	return toPreferencesResponse(prefs), nil
}

// Update changes display sizes only. The selected personality goes through
// the personality service so it is always validated.
func (c *preferenceService) Update(ctx context.Context, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	docs := uow.DocumentRepository()
	prefs, err := loadPreferences(ctx, docs)
	if err != nil {
		return nil, err
	}

	if req.ButtonSize != "" {
		prefs.ButtonSize = req.ButtonSize
	}
	if req.TextSize != "" {
		prefs.TextSize = req.TextSize
	}

	if err := docs.Put(ctx, PreferencesDocumentKey, prefs); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toPreferencesResponse(prefs), nil
}
