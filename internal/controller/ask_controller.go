package controller

import (
	"io"

	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/pkg/serverutils"
	"offline-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const askImageField = "image"

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
}

type askController struct {
	askService service.IAskService
}

func NewAskController(askService service.IAskService) IAskController {
	return &askController{
		askService: askService,
	}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	r.Post("/ask", c.Ask)
	r.Post("/stop", c.Stop)
}

// Ask accepts a JSON body or a multipart form. A file in the "image" field
// travels as an attachment.
func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if header, err := ctx.FormFile(askImageField); err == nil {
		file, err := header.Open()
		if err != nil {
			return err
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return err
		}
		req.Attachment = &dto.AskAttachment{
			Filename:    header.Filename,
			ContentType: header.Header.Get(fiber.HeaderContentType),
			Content:     content,
		}
	}

	res, err := c.askService.Ask(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	if res.Stopped {
		return ctx.JSON(serverutils.SuccessResponse(res.Error, res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate response", res))
}

func (c *askController) Stop(ctx *fiber.Ctx) error {
	res, err := c.askService.Stop(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}
