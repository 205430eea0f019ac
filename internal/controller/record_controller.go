// FILE: internal/controller/record_controller.go
package controller

import (
	"emily-marketing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRecordController interface {
	RegisterRoutes(r fiber.Router, authMW fiber.Handler)
	ListContent(ctx *fiber.Ctx) error
	ListLeads(ctx *fiber.Ctx) error
}

type recordController struct {
	service service.IRecordService
}

func NewRecordController(service service.IRecordService) IRecordController {
	return &recordController{service: service}
}

func (c *recordController) RegisterRoutes(r fiber.Router, authMW fiber.Handler) {
	h := r.Group("/records")
	h.Use(authMW)
	h.Get("/content", c.ListContent)
	h.Get("/leads", c.ListLeads)
}

func (c *recordController) ListContent(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)
	status := ctx.Query("status")

	records, total, err := c.service.ListContent(ctx.Context(), userId, status, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    records,
		"total":   total,
	})
}

func (c *recordController) ListLeads(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)
	status := ctx.Query("status")

	leads, total, err := c.service.ListLeads(ctx.Context(), userId, status, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    leads,
		"total":   total,
	})
}
