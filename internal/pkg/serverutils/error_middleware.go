package serverutils

import (
	"errors"

	"ai-research-be/pkg/report"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps typed service errors onto HTTP statuses:
// bad input stays a client error, strategy failures surface as a bad
// gateway so callers can distinguish them from bugs in this server.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var validationErr *report.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Error(),
			})
		}

		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fieldErrs.Error(),
			})
		}

		var executionErr *report.ExecutionError
		if errors.As(err, &executionErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": executionErr.Error(),
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiberErr.Message,
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
