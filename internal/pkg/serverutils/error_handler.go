package serverutils

import (
	"errors"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a domain error to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	var (
		validation *apperror.ValidationError
		duplicate  *apperror.DuplicateNameError
		protected  *apperror.ProtectedEntityError
		notFound   *apperror.NotFoundError
		network    *apperror.NetworkError
		cancelled  *apperror.CancelledError
		restore    *apperror.RestoreFormatError
		fiberErr   *fiber.Error
	)

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.As(err, &duplicate):
		return fiber.StatusConflict
	case errors.As(err, &protected):
		return fiber.StatusForbidden
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &network):
		return fiber.StatusBadGateway
	case errors.As(err, &cancelled):
		return fiber.StatusOK
	case errors.As(err, &restore):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into the
// BaseResponse envelope.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, log, err)
	}
}

func writeError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	status := StatusFor(err)
	details := map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"status": status,
		"error":  err.Error(),
	}

	switch {
	case apperror.IsCancelled(err):
		return ctx.Status(status).JSON(SuccessResponse(err.Error(), fiber.Map{
			"stopped": true,
			"error":   err.Error(),
		}))
	case apperror.IsUserFacing(err):
	case status == fiber.StatusNotFound, status == fiber.StatusBadGateway, status == fiber.StatusUnprocessableEntity:
		log.Warn("HTTP", "Request failed", details)
	case status >= fiber.StatusInternalServerError:
		log.Error("HTTP", "Unhandled error", details)
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return ctx.Status(status).JSON(ErrorResponse(status, message))
}
