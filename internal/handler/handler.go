package handler

import (
	"go-social-shop/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto its HTTP status with the shared error
// body shape.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.Status(err)).JSON(fiber.Map{"error": err.Error()})
}
