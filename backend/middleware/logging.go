package middleware

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not run yet, so the response still says 200
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		logger.Printf("%s %s %s %d %v %v",
			c.IP(),
			c.Method(),
			c.Path(),
			status,
			time.Since(start),
			err,
		)

		return err
	}
}
