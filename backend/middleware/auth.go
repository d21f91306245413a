package middleware

import (
	"log"

	"scholarly/backend/config"
	"scholarly/backend/services"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireSignin rejects requests without a valid token and stores the caller's
// id under "userID".
func RequireSignin(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}

func IsInstructor(instructors *services.InstructorService, logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := instructors.CurrentInstructor(c.UserContext(), utils.CurrentUserID(c)); err != nil {
			return utils.HandleError(c, logger, err)
		}
		return c.Next()
	}
}

// IsEnrolled lets the request through only if the caller holds the course named
// by the :slug param. The loaded course is stored under "course".
func IsEnrolled(enrollments *services.EnrollmentService, logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		course, err := enrollments.EnrolledCourse(c.UserContext(), utils.CurrentUserID(c), c.Params("slug"))
		if err != nil {
			return utils.HandleError(c, logger, err)
		}
		c.Locals("course", course)
		return c.Next()
	}
}
