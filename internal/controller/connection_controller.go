// FILE: internal/controller/connection_controller.go
package controller

import (
	"context"
	"errors"

	"emily-marketing-be/internal/service"
	"emily-marketing-be/pkg/connect"

	"github.com/gofiber/fiber/v2"
)

type IConnectionController interface {
	RegisterRoutes(r fiber.Router, authMW fiber.Handler)
	Initiate(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Wait(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
}

type connectionController struct {
	service   service.IConnectionService
	clientURL string
}

func NewConnectionController(service service.IConnectionService, clientURL string) IConnectionController {
	return &connectionController{service: service, clientURL: clientURL}
}

func (c *connectionController) RegisterRoutes(r fiber.Router, authMW fiber.Handler) {
	h := r.Group("/connections")
	// The OAuth provider calls the callback without our bearer token.
	h.Get("/callback", c.Callback)

	h.Use(authMW)
	h.Get("/", c.Status)
	h.Post("/:platform/initiate", c.Initiate)
	h.Get("/:platform/wait", c.Wait)
	h.Post("/:platform/cancel", c.Cancel)
	h.Delete("/:platform", c.Disconnect)
}

func (c *connectionController) Initiate(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	platform := ctx.Params("platform")

	res, err := c.service.Initiate(ctx.Context(), userId, platform)
	if err != nil {
		if errors.Is(err, connect.ErrAttemptInFlight) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"code":    409,
				"message": "A connection attempt is already in progress",
			})
		}
		if errors.Is(err, service.ErrUnsupportedPlatform) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"code":    400,
				"message": err.Error(),
			})
		}
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

// Callback is the OAuth redirect target. It settles the attempt and sends
// the browser back to the dashboard.
func (c *connectionController) Callback(ctx *fiber.Ctx) error {
	state := ctx.Query("state")
	code := ctx.Query("code")
	providerErr := ctx.Query("error")

	platform, err := c.service.HandleCallback(ctx.Context(), state, code, providerErr)
	if err != nil {
		return ctx.Redirect(c.clientURL + "/connections?status=error&platform=" + platform)
	}
	if providerErr != "" {
		return ctx.Redirect(c.clientURL + "/connections?status=denied&platform=" + platform)
	}
	return ctx.Redirect(c.clientURL + "/connections?status=connected&platform=" + platform)
}

// Wait long-polls the pending attempt for the platform. It resolves when
// the OAuth callback (or a cancel) lands, so the dashboard does not have
// to poll the status endpoint.
func (c *connectionController) Wait(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	platform := ctx.Params("platform")

	err = c.service.AwaitCompletion(ctx.Context(), userId, platform)
	switch {
	case err == nil:
		return ctx.JSON(fiber.Map{
			"success": true,
			"code":    200,
			"data":    fiber.Map{"connected": true, "platform": platform},
		})
	case errors.Is(err, connect.ErrNoAttempt):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"code":    404,
			"message": "No pending connection attempt",
		})
	case errors.Is(err, connect.ErrCancelled):
		return ctx.JSON(fiber.Map{
			"success": true,
			"code":    200,
			"data":    fiber.Map{"connected": false, "platform": platform, "reason": "cancelled"},
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ctx.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{
			"success": false,
			"code":    408,
			"message": "Connection attempt still pending",
		})
	default:
		return ctx.JSON(fiber.Map{
			"success": true,
			"code":    200,
			"data":    fiber.Map{"connected": false, "platform": platform, "reason": err.Error()},
		})
	}
}

func (c *connectionController) Cancel(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	platform := ctx.Params("platform")

	if err := c.service.Cancel(ctx.Context(), userId, platform); err != nil {
		if errors.Is(err, connect.ErrNoAttempt) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"code":    404,
				"message": "No pending connection attempt",
			})
		}
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200})
}

func (c *connectionController) Status(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.Status(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200, "data": res})
}

func (c *connectionController) Disconnect(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	platform := ctx.Params("platform")

	if err := c.service.Disconnect(ctx.Context(), userId, platform); err != nil {
		if errors.Is(err, service.ErrUnsupportedPlatform) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"code":    400,
				"message": err.Error(),
			})
		}
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "code": 200})
}
