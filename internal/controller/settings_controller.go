package controller

import (
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/pkg/serverutils"
	"offline-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ISettingsController serves the small per-user stores: prompt history,
// display preferences and sidebar view state.
type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	ListPrompts(ctx *fiber.Ctx) error
	RecordPrompt(ctx *fiber.Ctx) error
	ClearPrompts(ctx *fiber.Ctx) error
	GetPreferences(ctx *fiber.Ctx) error
	UpdatePreferences(ctx *fiber.Ctx) error
	GetViewState(ctx *fiber.Ctx) error
	SaveViewState(ctx *fiber.Ctx) error
}

type settingsController struct {
	promptHistoryService service.IPromptHistoryService
	preferenceService    service.IPreferenceService
	viewStateService     service.IViewStateService
}

func NewSettingsController(
	promptHistoryService service.IPromptHistoryService,
	preferenceService service.IPreferenceService,
	viewStateService service.IViewStateService,
) ISettingsController {
	return &settingsController{
		promptHistoryService: promptHistoryService,
		preferenceService:    preferenceService,
		viewStateService:     viewStateService,
	}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	r.Get("/prompt-history", c.ListPrompts)
	r.Post("/prompt-history", c.RecordPrompt)
	r.Delete("/prompt-history", c.ClearPrompts)

	r.Get("/preferences", c.GetPreferences)
	r.Put("/preferences", c.UpdatePreferences)

	r.Get("/view-state", c.GetViewState)
	r.Put("/view-state", c.SaveViewState)
}

func (c *settingsController) ListPrompts(ctx *fiber.Ctx) error {
	res, err := c.promptHistoryService.List(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list prompt history", res))
}

func (c *settingsController) RecordPrompt(ctx *fiber.Ctx) error {
	var req dto.RecordPromptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.promptHistoryService.Record(ctx.UserContext(), req.Text); err != nil {
		return err
	}

	res, err := c.promptHistoryService.List(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record prompt", res))
}

func (c *settingsController) ClearPrompts(ctx *fiber.Ctx) error {
	if err := c.promptHistoryService.Clear(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Prompt history cleared", &dto.PromptHistoryResponse{Prompts: []string{}}))
}

func (c *settingsController) GetPreferences(ctx *fiber.Ctx) error {
	res, err := c.preferenceService.Get(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get preferences", res))
}

func (c *settingsController) UpdatePreferences(ctx *fiber.Ctx) error {
	var req dto.UpdatePreferencesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.preferenceService.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update preferences", res))
}

func (c *settingsController) GetViewState(ctx *fiber.Ctx) error {
	res, err := c.viewStateService.Get(ctx.UserContext(), ctx.Query("client_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get view state", res))
}

func (c *settingsController) SaveViewState(ctx *fiber.Ctx) error {
	var req dto.ViewStateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.viewStateService.Save(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save view state", res))
}
