package handlers

import (
	"errors"

	"orderflow/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps domain error kinds to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrPaymentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInsufficientInventory),
		errors.Is(err, models.ErrInsufficientReservedInventory),
		errors.Is(err, models.ErrAmountMismatch):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidStatusTransition):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrPaymentFailed):
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}
