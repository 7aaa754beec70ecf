package service

import (
	"context"
	"strings"
	"time"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/repository/contract"
	"offline-chat-be/internal/repository/specification"
	"offline-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type INoteService interface {
	GetAll(ctx context.Context, category string) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, id string) (*dto.NoteResponse, error)
	Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Move(ctx context.Context, req *dto.MoveNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, id string) error
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

func NewNoteService(uowFactory unitofwork.RepositoryFactory) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Category:  note.Category,
		CreatedAt: note.CreatedAt,
		Timestamp: note.Timestamp,
	}
}

// resolveCategory maps a requested category name onto the stored one. An
// empty name means uncategorized.
func resolveCategory(ctx context.Context, repo contract.CategoryRepository, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.UncategorizedName, nil
	}
	category, err := repo.FindOne(ctx, specification.ByNameInsensitive{Name: name})
	if err != nil {
		return "", err
	}
	if category == nil {
		return "", apperror.NotFound("note category", name)
	}
	return category.Name, nil
}

func (c *noteService) GetAll(ctx context.Context, category string) ([]*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id"},
	}
	if category != "" {
		specs = append(specs, specification.ByCategoryName{Category: category})
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		result = append(result, toNoteResponse(note))
	}
	return result, nil
}

func (c *noteService) Show(ctx context.Context, id string) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NotFound("note", id)
	}
	return toNoteResponse(note), nil
}

func (c *noteService) Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("title", "note title is required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	category, err := resolveCategory(ctx, uow.CategoryRepository(entity.CategoryKindNote), req.Category)
	if err != nil {
		return nil, err
	}

	now := c.now()
	note := &entity.Note{
		Id:        uuid.New().String(),
		Title:     title,
		Content:   req.Content,
		Category:  category,
		CreatedAt: now,
		Timestamp: now,
	}
	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (c *noteService) Update(ctx context.Context, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("title", "note title is required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.NoteRepository()
	note, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NotFound("note", req.Id)
	}

	category, err := resolveCategory(ctx, uow.CategoryRepository(entity.CategoryKindNote), req.Category)
	if err != nil {
		return nil, err
	}

	note.Title = title
	note.Content = req.Content
	note.Category = category
	note.Timestamp = c.now()
	if err := repo.Update(ctx, note); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

// Move only reassigns the category; the edit timestamp is left alone.
func (c *noteService) Move(ctx context.Context, req *dto.MoveNoteRequest) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.NoteRepository()
	note, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NotFound("note", req.Id)
	}

	category, err := resolveCategory(ctx, uow.CategoryRepository(entity.CategoryKindNote), req.Category)
	if err != nil {
		return nil, err
	}
	if category == note.Category {
		return toNoteResponse(note), nil
	}

	note.Category = category
	if err := repo.Update(ctx, note); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (c *noteService) Delete(ctx context.Context, id string) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.NoteRepository()
	count, err := repo.Count(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if count == 0 {
		return apperror.NotFound("note", id)
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}
