package controller

import (
	"bytes"
	"strconv"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/pkg/serverutils"
	"regdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRegistrationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
	Events(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type registrationController struct {
	service service.IRegistrationService
}

func NewRegistrationController(service service.IRegistrationService) IRegistrationController {
	return &registrationController{service: service}
}

// RegisterRoutes expects r to be the admin-protected group
func (c *registrationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/registrations")
	h.Get("/", c.List)
	h.Get("/export", c.Export)
	h.Get("/:id", c.Detail)
	h.Get("/:id/events", c.Events)
	h.Post("/:id/approve", c.Approve)
	h.Post("/:id/reject", c.Reject)
	h.Post("/:id/restore", c.Restore)
	h.Delete("/:id", c.Delete)
}

func parseFilter(ctx *fiber.Ctx) (dto.RegistrationFilter, error) {
	filter := dto.RegistrationFilter{
		Query:        ctx.Query("q"),
		Status:       ctx.Query("status"),
		CategoryId:   ctx.Query("category_id"),
		PanchayathId: ctx.Query("panchayath_id"),
		Sort:         ctx.Query("sort"),
		Order:        ctx.Query("order"),
	}
	if raw := ctx.Query("expiry_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "expiry_days must be a number")
		}
		filter.ExpiryDays = &n
	}
	if err := serverutils.Validate(filter); err != nil {
		return filter, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return filter, nil
}

func parseID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

func (c *registrationController) List(ctx *fiber.Ctx) error {
	filter, err := parseFilter(ctx)
	if err != nil {
		return err
	}
	rows, err := c.service.List(ctx.UserContext(), filter)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Registration list", rows))
}

func (c *registrationController) Export(ctx *fiber.Ctx) error {
	filter, err := parseFilter(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	filename, err := c.service.Export(ctx.UserContext(), filter, &buf)
	if err != nil {
		return fail(ctx, err)
	}
	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Attachment(filename)
	return ctx.Send(buf.Bytes())
}

func (c *registrationController) Detail(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Detail(ctx.UserContext(), id)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Registration detail", res))
}

func (c *registrationController) Events(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Events(ctx.UserContext(), id)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Registration history", res))
}

func (c *registrationController) Approve(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Approve(ctx.UserContext(), id, serverutils.Actor(ctx))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Registration approved", res))
}

func (c *registrationController) Reject(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Reject(ctx.UserContext(), id, serverutils.Actor(ctx))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Registration rejected", res))
}

func (c *registrationController) Restore(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Restore(ctx.UserContext(), id, serverutils.Actor(ctx))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Registration restored", res))
}

// Delete is irreversible and needs ?confirm=true
func (c *registrationController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	confirm := ctx.QueryBool("confirm", false)
	if err := c.service.Delete(ctx.UserContext(), id, serverutils.Actor(ctx), confirm); err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Registration deleted", nil))
}
