package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/listforge/listforge/internal/models"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// errorJSON maps the workflow error taxonomy onto HTTP statuses. Retryable
// publish failures carry a flag so the frontend can offer "try again";
// everything else is final until the user changes something.
func errorJSON(c *fiber.Ctx, err error) error {
	var pubErr *models.PublishError

	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientFunds):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidSchedule):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &pubErr):
		if pubErr.Retryable {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":     pubErr.Error(),
				"retryable": true,
			})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     pubErr.Error(),
			"retryable": false,
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}
