package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"fashionstore/internal/domain"
	applog "fashionstore/internal/log"
)

// writeErr maps the domain error taxonomy onto HTTP responses. Storage
// failures are logged with full detail but surfaced generically.
func writeErr(c *fiber.Ctx, action string, err error) error {
	var ve *domain.ValidationError
	var nf *domain.NotFoundError
	var is *domain.InsufficientStockError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": nf.Error()})
	case errors.As(err, &is):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      is.Error(),
			"product_id": is.ProductID,
			"shortfall":  is.Shortfall(),
		})
	default:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong, please try again",
		})
	}
}
