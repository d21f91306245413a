package controllers

import (
	"log"

	"scholarly/backend/services"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Completions *services.CompletionService
	Logger      *log.Logger
}

func NewProgressController(completions *services.CompletionService, logger *log.Logger) *ProgressController {
	return &ProgressController{Completions: completions, Logger: logger}
}

// MarkCompleted godoc
// @Summary Mark a lesson as completed
// @Tags progress
// @Accept json
// @Produce json
// @Param request body services.LessonRef true "Course and lesson"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /mark-completed [post]
func (pc *ProgressController) MarkCompleted(c *fiber.Ctx) error {
	var ref services.LessonRef
	if err := c.BodyParser(&ref); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := pc.Completions.MarkCompleted(c.UserContext(), utils.CurrentUserID(c), ref); err != nil {
		return utils.HandleError(c, pc.Logger, err)
	}
	return utils.OK(c)
}

// @Router /mark-incomplete [post]
func (pc *ProgressController) MarkIncomplete(c *fiber.Ctx) error {
	var ref services.LessonRef
	if err := c.BodyParser(&ref); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := pc.Completions.MarkIncomplete(c.UserContext(), utils.CurrentUserID(c), ref); err != nil {
		return utils.HandleError(c, pc.Logger, err)
	}
	return utils.OK(c)
}

// ListCompleted godoc
// @Summary Completed lesson ids for a course
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {array} int
// @Security ApiKeyAuth
// @Router /list-completed [post]
func (pc *ProgressController) ListCompleted(c *fiber.Ctx) error {
	var input struct {
		CourseID uint `json:"courseId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	ids, err := pc.Completions.ListCompleted(c.UserContext(), utils.CurrentUserID(c), input.CourseID)
	if err != nil {
		return utils.HandleError(c, pc.Logger, err)
	}
	return c.JSON(ids)
}
