package controllers

import (
	"log"

	"scholarly/backend/services"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct {
	Enrollments *services.EnrollmentService
	Logger      *log.Logger
}

func NewEnrollmentController(enrollments *services.EnrollmentService, logger *log.Logger) *EnrollmentController {
	return &EnrollmentController{Enrollments: enrollments, Logger: logger}
}

// CheckEnrollment godoc
// @Summary Whether the caller is enrolled in a course
// @Tags enrollment
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} services.EnrollmentStatus
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /check-enrollment/{courseId} [get]
func (ec *EnrollmentController) CheckEnrollment(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	status, err := ec.Enrollments.CheckEnrollment(c.UserContext(), utils.CurrentUserID(c), courseID)
	if err != nil {
		return utils.HandleError(c, ec.Logger, err)
	}
	return c.JSON(status)
}

// FreeEnrollment godoc
// @Summary Enroll in a free course
// @Tags enrollment
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /free-enrollment/{courseId} [post]
func (ec *EnrollmentController) FreeEnrollment(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	course, err := ec.Enrollments.EnrollFree(c.UserContext(), utils.CurrentUserID(c), courseID)
	if err != nil {
		return utils.HandleError(c, ec.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Congratulations! You have successfully enrolled",
		"course":  course,
	})
}

// PaidEnrollment godoc
// @Summary Start checkout for a paid course
// @Description Returns the checkout session the client should redirect to
// @Tags enrollment
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} payments.Session
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /paid-enrollment/{courseId} [post]
func (ec *EnrollmentController) PaidEnrollment(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	session, err := ec.Enrollments.InitiatePaidEnrollment(c.UserContext(), utils.CurrentUserID(c), courseID)
	if err != nil {
		return utils.HandleError(c, ec.Logger, err)
	}
	return c.JSON(session)
}

// StripeSuccess godoc
// @Summary Confirm a paid enrollment after checkout
// @Tags enrollment
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} services.Confirmation
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /stripe-success/{courseId} [get]
func (ec *EnrollmentController) StripeSuccess(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	confirmation, err := ec.Enrollments.ConfirmPaidEnrollment(c.UserContext(), utils.CurrentUserID(c), courseID)
	if err != nil {
		return utils.HandleError(c, ec.Logger, err)
	}
	return c.JSON(confirmation)
}

// UserCourses godoc
// @Summary Courses the caller is enrolled in
// @Tags enrollment
// @Produce json
// @Success 200 {array} models.Course
// @Security ApiKeyAuth
// @Router /user-courses [get]
func (ec *EnrollmentController) UserCourses(c *fiber.Ctx) error {
	courses, err := ec.Enrollments.UserCourses(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.HandleError(c, ec.Logger, err)
	}
	return c.JSON(courses)
}

// EnrolledCourse returns the course IsEnrolled already loaded.
// @Router /user/course/{slug} [get]
func (ec *EnrollmentController) EnrolledCourse(c *fiber.Ctx) error {
	return c.JSON(c.Locals("course"))
}
