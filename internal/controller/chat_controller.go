package controller

import (
	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/pkg/serverutils"
	"offline-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListByCategory(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Move(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ClearAll(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats")
	h.Get("", c.List)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Put("/:id/rename", c.Rename)
	h.Put("/:id/category", c.Move)
	h.Delete("/:id", c.Delete)

	r.Get("/categories/:id/chats", c.ListByCategory)
	r.Delete("/clear-all-data", c.ClearAll)
}

func (c *chatController) List(ctx *fiber.Ctx) error {
	res, err := c.chatService.List(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chats", &dto.ChatListResponse{Chats: res}))
}

func (c *chatController) ListByCategory(ctx *fiber.Ctx) error {
	res, err := c.chatService.ListByCategory(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chats", &dto.ChatListResponse{Chats: res}))
}

// Show returns turns in stored order unless ?order=recent is given.
func (c *chatController) Show(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var res *dto.ChatResponse
	var err error
	switch ctx.Query("order", dto.TurnOrderInsertion) {
	case dto.TurnOrderInsertion:
		res, err = c.chatService.Show(ctx.UserContext(), id)
	case dto.TurnOrderRecent:
		res, err = c.chatService.ShowByRecency(ctx.UserContext(), id)
	default:
		return apperror.Validation("order", "order must be insertion or recent")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat", &dto.ShowChatResponse{Chat: res}))
}

func (c *chatController) Rename(ctx *fiber.Ctx) error {
	var req dto.RenameChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Rename(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename chat", &dto.ShowChatResponse{Chat: res}))
}

// Update takes the chat's new name as title.
func (c *chatController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Rename(ctx.UserContext(), &dto.RenameChatRequest{Id: req.Id, NewName: req.Title})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update chat", &dto.ShowChatResponse{Chat: res}))
}

func (c *chatController) Move(ctx *fiber.Ctx) error {
	var req dto.MoveChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Move(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success move chat", &dto.ShowChatResponse{Chat: res}))
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if err := c.chatService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chat", &dto.DeleteResponse{DeletedId: id, Removed: 1}))
}

func (c *chatController) ClearAll(ctx *fiber.Ctx) error {
	res, err := c.chatService.ClearAll(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}
