package controller

import (
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/pkg/serverutils"
	"offline-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPersonalityController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
}

type personalityController struct {
	personalityService service.IPersonalityService
}

func NewPersonalityController(personalityService service.IPersonalityService) IPersonalityController {
	return &personalityController{
		personalityService: personalityService,
	}
}

func (c *personalityController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/personalities")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/resolve", c.Resolve)
	h.Put("/selection", c.Select)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *personalityController) List(ctx *fiber.Ctx) error {
	res, err := c.personalityService.List(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list personalities", res))
}

func (c *personalityController) Create(ctx *fiber.Ctx) error {
	var req dto.CreatePersonalityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.personalityService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create personality", res))
}

func (c *personalityController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdatePersonalityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.personalityService.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update personality", res))
}

func (c *personalityController) Delete(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if err := c.personalityService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete personality", &dto.DeleteResponse{DeletedId: id, Removed: 1}))
}

func (c *personalityController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectPersonalityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.personalityService.Select(ctx.UserContext(), req.Id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select personality", res))
}

// Resolve answers with the prompt for ?id=, or for the current selection.
func (c *personalityController) Resolve(ctx *fiber.Ctx) error {
	res, err := c.personalityService.ResolveSystemPrompt(ctx.UserContext(), ctx.Query("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve system prompt", res))
}
