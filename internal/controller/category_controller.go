package controller

import (
	"regdesk-be/internal/dto"
	"regdesk-be/internal/pkg/serverutils"
	"regdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICategoryController interface {
	RegisterRoutes(r fiber.Router)
	GetAllCategories(ctx *fiber.Ctx) error
	GetCategory(ctx *fiber.Ctx) error
	CreateCategory(ctx *fiber.Ctx) error
	UpdateCategory(ctx *fiber.Ctx) error
	DeleteCategory(ctx *fiber.Ctx) error
	GetPanchayaths(ctx *fiber.Ctx) error
}

type categoryController struct {
	service service.ICategoryService
}

func NewCategoryController(service service.ICategoryService) ICategoryController {
	return &categoryController{service: service}
}

func (c *categoryController) RegisterRoutes(r fiber.Router) {
	r.Get("/categories", c.GetAllCategories)
	r.Get("/categories/:id", c.GetCategory)
	r.Post("/categories", c.CreateCategory)
	r.Put("/categories/:id", c.UpdateCategory)
	r.Delete("/categories/:id", c.DeleteCategory)

	r.Get("/panchayaths", c.GetPanchayaths)
}

// GetAllCategories lists active categories; ?all=true includes inactive ones
func (c *categoryController) GetAllCategories(ctx *fiber.Ctx) error {
	cats, err := c.service.ListCategories(ctx.UserContext(), ctx.QueryBool("all", false))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Category list", cats))
}

func (c *categoryController) GetCategory(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	cat, err := c.service.GetCategory(ctx.UserContext(), id)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Category detail", cat))
}

func bindCategory(ctx *fiber.Ctx) (dto.CategoryRequest, error) {
	var req dto.CategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.Validate(req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return req, nil
}

func (c *categoryController) CreateCategory(ctx *fiber.Ctx) error {
	req, err := bindCategory(ctx)
	if err != nil {
		return err
	}
	cat, err := c.service.CreateCategory(ctx.UserContext(), req)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Category created", cat))
}

func (c *categoryController) UpdateCategory(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	req, err := bindCategory(ctx)
	if err != nil {
		return err
	}
	cat, err := c.service.UpdateCategory(ctx.UserContext(), id, req)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Category updated", cat))
}

// DeleteCategory only deactivates; registrations keep their category
func (c *categoryController) DeleteCategory(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.DeactivateCategory(ctx.UserContext(), id); err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Category deactivated", nil))
}

func (c *categoryController) GetPanchayaths(ctx *fiber.Ctx) error {
	ps, err := c.service.ListPanchayaths(ctx.UserContext(), ctx.Query("district"))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Panchayath list", ps))
}
