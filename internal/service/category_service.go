package service

import (
	"context"
	"sort"
	"strings"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/internal/repository/specification"
	"offline-chat-be/internal/repository/unitofwork"
	"offline-chat-be/pkg/events"

	"github.com/google/uuid"
)

type ICategoryService interface {
	Kind() entity.CategoryKind
	List(ctx context.Context) ([]*dto.CategoryResponse, error)
	Create(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Rename(ctx context.Context, req *dto.RenameCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id string) (*dto.DeleteResponse, error)
}

type categoryService struct {
	kind       entity.CategoryKind
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
}

// NewCategoryService manages one namespace. Chat categories own chats by id;
// note categories own notes by name.
func NewCategoryService(
	kind entity.CategoryKind,
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	logger logger.ILogger,
) ICategoryService {
	return &categoryService{
		kind:       kind,
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

func (c *categoryService) Kind() entity.CategoryKind {
	return c.kind
}

func toCategoryResponse(category *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{Id: category.Id, Name: category.Name}
}

func (c *categoryService) List(ctx context.Context) ([]*dto.CategoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	categories, err := uow.CategoryRepository(c.kind).FindAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(categories, func(i, j int) bool {
		a, b := categories[i], categories[j]
		if a.IsProtected() != b.IsProtected() {
			return a.IsProtected()
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	result := make([]*dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		result = append(result, toCategoryResponse(category))
	}
	return result, nil
}

func (c *categoryService) Create(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name", "category name is required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.CategoryRepository(c.kind)
	existing, err := repo.FindOne(ctx, specification.ByNameInsensitive{Name: name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &apperror.DuplicateNameError{Entity: "category", Name: name}
	}

	category := &entity.Category{
		Id:   uuid.New().String(),
		Name: name,
		Kind: c.kind,
	}
	if err := repo.Create(ctx, category); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

func (c *categoryService) Rename(ctx context.Context, req *dto.RenameCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.NewName)
	if name == "" {
		return nil, apperror.Validation("new_name", "category name is required")
	}
	if req.Id == entity.UncategorizedId {
		return nil, &apperror.ProtectedEntityError{Entity: "category", Id: req.Id}
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.CategoryRepository(c.kind)
	category, err := repo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NotFound("category", req.Id)
	}

	clash, err := repo.FindOne(ctx,
		specification.ByNameInsensitive{Name: name},
		specification.ExcludeID{ID: category.Id},
	)
	if err != nil {
		return nil, err
	}
	if clash != nil {
		return nil, &apperror.DuplicateNameError{Entity: "category", Name: name}
	}

	oldName := category.Name
	category.Name = name
	if err := repo.Update(ctx, category); err != nil {
		return nil, err
	}

	var cascaded int64
	if c.kind == entity.CategoryKindNote && oldName != name {
		cascaded, err = uow.NoteRepository().RenameCategory(ctx, oldName, name)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.logger.Info("CATEGORY", "Category renamed", map[string]interface{}{
		"kind":     c.kind,
		"id":       category.Id,
		"old_name": oldName,
		"new_name": name,
		"notes":    cascaded,
	})
	return toCategoryResponse(category), nil
}

// Delete removes the category and every member. Callers confirm with the user
// before calling; the removal cannot be undone.
func (c *categoryService) Delete(ctx context.Context, id string) (*dto.DeleteResponse, error) {
	if id == entity.UncategorizedId {
		return nil, &apperror.ProtectedEntityError{Entity: "category", Id: id}
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.CategoryRepository(c.kind)
	category, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NotFound("category", id)
	}

	var removed int64
	if c.kind == entity.CategoryKindNote {
		removed, err = uow.NoteRepository().DeleteByCategory(ctx, category.Name)
	} else {
		removed, err = uow.ChatRepository().DeleteByCategoryId(ctx, category.Id)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.Delete(ctx, category.Id); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	publishEvent(ctx, c.publisher, c.logger, events.CategoryDeleted, map[string]interface{}{
		"kind":    string(c.kind),
		"id":      category.Id,
		"removed": removed,
	})
	return &dto.DeleteResponse{DeletedId: category.Id, Removed: removed}, nil
}
