package controllers

import (
	"log"

	"scholarly/backend/services"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type InstructorController struct {
	Instructors *services.InstructorService
	Logger      *log.Logger
}

func NewInstructorController(instructors *services.InstructorService, logger *log.Logger) *InstructorController {
	return &InstructorController{Instructors: instructors, Logger: logger}
}

// MakeInstructor godoc
// @Summary Start payout onboarding
// @Description Returns the onboarding link for the caller's payout account
// @Tags instructor
// @Produce json
// @Success 200 {string} string
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /make-instructor [post]
func (ic *InstructorController) MakeInstructor(c *fiber.Ctx) error {
	link, err := ic.Instructors.MakeInstructor(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.HandleError(c, ic.Logger, err)
	}
	return c.JSON(link)
}

// AccountStatus godoc
// @Summary Finish payout onboarding
// @Description Grants the Instructor role once the payout account accepts charges
// @Tags instructor
// @Produce json
// @Success 200 {object} models.User
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /get-account-status [post]
func (ic *InstructorController) AccountStatus(c *fiber.Ctx) error {
	user, err := ic.Instructors.AccountStatus(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.HandleError(c, ic.Logger, err)
	}
	return c.JSON(user)
}

// @Router /current-instructor [get]
func (ic *InstructorController) CurrentInstructor(c *fiber.Ctx) error {
	if _, err := ic.Instructors.CurrentInstructor(c.UserContext(), utils.CurrentUserID(c)); err != nil {
		return utils.HandleError(c, ic.Logger, err)
	}
	return utils.OK(c)
}

// @Router /instructor/balance [get]
func (ic *InstructorController) Balance(c *fiber.Ctx) error {
	balance, err := ic.Instructors.Balance(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.HandleError(c, ic.Logger, err)
	}
	return c.JSON(balance)
}

// @Router /instructor/payout-settings [get]
func (ic *InstructorController) PayoutSettings(c *fiber.Ctx) error {
	link, err := ic.Instructors.PayoutSettings(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.HandleError(c, ic.Logger, err)
	}
	return c.JSON(link)
}
