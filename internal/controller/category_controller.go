package controller

import (
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/pkg/serverutils"
	"offline-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICategoryController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

// categoryController serves one category kind under prefix: chat categories
// at /categories and note categories at /note-categories.
type categoryController struct {
	prefix          string
	categoryService service.ICategoryService
}

func NewCategoryController(prefix string, categoryService service.ICategoryService) ICategoryController {
	return &categoryController{
		prefix:          prefix,
		categoryService: categoryService,
	}
}

func (c *categoryController) RegisterRoutes(r fiber.Router) {
	h := r.Group(c.prefix)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Put("/:id", c.Update)
	h.Put("/:id/rename", c.Rename)
	h.Delete("/:id", c.Delete)
}

func (c *categoryController) List(ctx *fiber.Ctx) error {
	res, err := c.categoryService.List(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list categories", &dto.CategoryListResponse{Categories: res}))
}

func (c *categoryController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.categoryService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create category", &dto.ShowCategoryResponse{Category: res}))
}

func (c *categoryController) Rename(ctx *fiber.Ctx) error {
	var req dto.RenameCategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.categoryService.Rename(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename category", &dto.ShowCategoryResponse{Category: res}))
}

func (c *categoryController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateCategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.categoryService.Rename(ctx.UserContext(), &dto.RenameCategoryRequest{Id: req.Id, NewName: req.Name})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update category", &dto.ShowCategoryResponse{Category: res}))
}

func (c *categoryController) Delete(ctx *fiber.Ctx) error {
	res, err := c.categoryService.Delete(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete category", res))
}
