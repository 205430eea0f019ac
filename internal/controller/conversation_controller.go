// FILE: internal/controller/conversation_controller.go
package controller

import (
	"errors"

	"emily-marketing-be/internal/dto"
	"emily-marketing-be/internal/pkg/serverutils"
	"emily-marketing-be/internal/service"
	"emily-marketing-be/pkg/conversation"
	"emily-marketing-be/pkg/conversation/state"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, authMW fiber.Handler)
	GetConversation(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	SelectOption(ctx *fiber.Ctx) error
	ConfirmDates(ctx *fiber.Ctx) error
	ToggleContent(ctx *fiber.Ctx) error
	ToggleLead(ctx *fiber.Ctx) error
	Publish(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Schedule(ctx *fiber.Ctx) error
	SaveDraft(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
}

func NewConversationController(service service.IConversationService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router, authMW fiber.Handler) {
	h := r.Group("/conversation")
	h.Use(authMW)
	h.Get("/", c.GetConversation)
	h.Post("/message", c.SendMessage)
	h.Post("/clarification", c.SelectOption)
	h.Post("/dates", c.ConfirmDates)
	h.Post("/selection/content", c.ToggleContent)
	h.Post("/selection/lead", c.ToggleLead)
	h.Post("/publish", c.Publish)
	h.Post("/delete", c.Delete)
	h.Post("/schedule", c.Schedule)
	h.Post("/draft", c.SaveDraft)
	h.Post("/reset", c.Reset)
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(userIdStr)
}

func (c *conversationController) GetConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.GetConversation(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return validationError(ctx, err)
	}

	res, err := c.service.SendMessage(ctx.Context(), userId, &req)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) SelectOption(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.SelectOptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return validationError(ctx, err)
	}

	res, err := c.service.SelectClarificationOption(ctx.Context(), userId, &req)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) ConfirmDates(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.DateRangeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.ConfirmDates(ctx.Context(), userId, &req)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) ToggleContent(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.ToggleContentSelectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return validationError(ctx, err)
	}

	res, err := c.service.ToggleContentSelection(ctx.Context(), userId, &req)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) ToggleLead(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.ToggleLeadSelectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return validationError(ctx, err)
	}

	res, err := c.service.ToggleLeadSelection(ctx.Context(), userId, &req)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) Publish(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.PublishSelected(ctx.Context(), userId)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.DeleteSelected(ctx.Context(), userId)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) Schedule(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.ScheduleSelectedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.ScheduleSelected(ctx.Context(), userId, &req)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) SaveDraft(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.SaveSelectedDraft(ctx.Context(), userId)
	if err != nil {
		return c.mapConversationError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *conversationController) Reset(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.ResetConversation(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

// mapConversationError translates domain errors into response codes. A busy
// conversation is a conflict the client treats as a no-op; local rejections
// are 422 and never reached the gateway.
func (c *conversationController) mapConversationError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, state.ErrBusy):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"code":    409,
			"message": "A message is already being processed",
		})
	case errors.Is(err, conversation.ErrMissingStartDate),
		errors.Is(err, service.ErrNoActiveClarification),
		errors.Is(err, service.ErrUnknownOption),
		errors.Is(err, service.ErrNothingSelected),
		errors.Is(err, service.ErrActionNotAllowed):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"code":    422,
			"message": err.Error(),
		})
	}
	return err
}

func validationError(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"code":    422,
		"message": err.Error(),
	})
}
