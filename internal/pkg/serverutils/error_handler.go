package serverutils

import (
	"errors"

	"emily-marketing-be/pkg/assistant"
	"emily-marketing-be/pkg/connect"
	"emily-marketing-be/pkg/conversation"
	"emily-marketing-be/pkg/conversation/state"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping the controllers into the
// standard response envelope. Known domain errors get specific codes:
// a busy conversation is a conflict, validation issues are 422, gateway
// failures are 502.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		var reqErr *assistant.RequestError
		switch {
		case errors.Is(err, state.ErrBusy):
			status = fiber.StatusConflict
		case errors.Is(err, conversation.ErrMissingStartDate):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, connect.ErrAttemptInFlight):
			status = fiber.StatusConflict
		case errors.Is(err, connect.ErrNoAttempt):
			status = fiber.StatusNotFound
		case errors.As(err, &reqErr):
			status = fiber.StatusBadGateway
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		}

		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}
}
