package controller

import (
	"errors"

	"regdesk-be/internal/pkg/serverutils"
	"regdesk-be/internal/service"
	"regdesk-be/pkg/admin/category"
	"regdesk-be/pkg/admin/lifecycle"
	"regdesk-be/pkg/admin/transfer"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain sentinels to HTTP codes; anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrRegistrationNotFound),
		errors.Is(err, transfer.ErrTransferNotFound),
		errors.Is(err, category.ErrCategoryNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, transfer.ErrTransferAlreadyResolved),
		errors.Is(err, transfer.ErrDuplicateTransfer):
		return fiber.StatusConflict
	case errors.Is(err, lifecycle.ErrConfirmationRequired),
		errors.Is(err, lifecycle.ErrActorRequired),
		errors.Is(err, transfer.ErrSameCategory),
		errors.Is(err, transfer.ErrCategoryUnavailable),
		errors.Is(err, category.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidStatusFilter):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(ctx *fiber.Ctx, err error) error {
	code := statusFor(err)
	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
}

func badRequest(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, message))
}
