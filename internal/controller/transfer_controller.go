package controller

import (
	"strconv"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/pkg/serverutils"
	"regdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITransferController interface {
	RegisterRoutes(r fiber.Router)
	GetTransfers(ctx *fiber.Ctx) error
	SubmitTransfer(ctx *fiber.Ctx) error
	ApproveTransfer(ctx *fiber.Ctx) error
	RejectTransfer(ctx *fiber.Ctx) error
}

type transferController struct {
	service service.ITransferService
}

func NewTransferController(service service.ITransferService) ITransferController {
	return &transferController{service: service}
}

func (c *transferController) RegisterRoutes(r fiber.Router) {
	r.Get("/transfers", c.GetTransfers)
	r.Post("/transfers", c.SubmitTransfer)
	r.Post("/transfers/:id/approve", c.ApproveTransfer)
	r.Post("/transfers/:id/reject", c.RejectTransfer)
}

func (c *transferController) GetTransfers(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))
	status := ctx.Query("status", "")

	res, err := c.service.List(ctx.UserContext(), status, page, limit)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Transfer requests", res))
}

func (c *transferController) SubmitTransfer(ctx *fiber.Ctx) error {
	var req dto.TransferSubmitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.Validate(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	res, err := c.service.Submit(ctx.UserContext(), req)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Transfer requested", res))
}

func (c *transferController) ApproveTransfer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Approve(ctx.UserContext(), id, serverutils.Actor(ctx))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Transfer approved", res))
}

func (c *transferController) RejectTransfer(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Reject(ctx.UserContext(), id, serverutils.Actor(ctx))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Transfer rejected", res))
}
