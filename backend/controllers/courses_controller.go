package controllers

import (
	"log"

	"scholarly/backend/services"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Courses *services.CourseService
	Logger  *log.Logger
}

func NewCoursesController(courses *services.CourseService, logger *log.Logger) *CoursesController {
	return &CoursesController{Courses: courses, Logger: logger}
}

// Create godoc
// @Summary Create a course
// @Description Creates an unpublished course owned by the calling instructor
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CourseInput true "Course data"
// @Success 200 {object} models.Course
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /course [post]
func (cc *CoursesController) Create(c *fiber.Ctx) error {
	var input services.CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := cc.Courses.Create(c.UserContext(), utils.CurrentUserID(c), input)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(course)
}

// Read godoc
// @Summary Get a course by slug
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} models.Course
// @Failure 404 {object} utils.ErrorResponse
// @Router /course/{slug} [get]
func (cc *CoursesController) Read(c *fiber.Ctx) error {
	course, err := cc.Courses.Read(c.UserContext(), c.Params("slug"))
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(course)
}

// Update godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param course body services.CourseInput true "Course data"
// @Success 200 {object} models.Course
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /course/{slug} [put]
func (cc *CoursesController) Update(c *fiber.Ctx) error {
	var input services.CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := cc.Courses.Update(c.UserContext(), utils.CurrentUserID(c), c.Params("slug"), input)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(course)
}

// AddLesson godoc
// @Summary Append a lesson to a course
// @Tags courses
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param lesson body services.LessonInput true "Lesson data"
// @Success 200 {object} models.Lesson
// @Security ApiKeyAuth
// @Router /course/lesson/{slug} [post]
func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	var input services.LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	lesson, err := cc.Courses.AddLesson(c.UserContext(), utils.CurrentUserID(c), c.Params("slug"), input)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(lesson)
}

// @Router /course/lesson/{slug}/{lessonId} [put]
func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}
	var input services.LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	lesson, err := cc.Courses.UpdateLesson(c.UserContext(), utils.CurrentUserID(c), c.Params("slug"), lessonID, input)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(lesson)
}

// @Router /course/{slug}/{lessonId} [delete]
func (cc *CoursesController) RemoveLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}

	course, err := cc.Courses.RemoveLesson(c.UserContext(), utils.CurrentUserID(c), c.Params("slug"), lessonID)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(course)
}

// Publish godoc
// @Summary Publish a course
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.Course
// @Security ApiKeyAuth
// @Router /course/publish/{courseId} [put]
func (cc *CoursesController) Publish(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	course, err := cc.Courses.Publish(c.UserContext(), utils.CurrentUserID(c), courseID)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(course)
}

// @Router /course/unpublish/{courseId} [put]
func (cc *CoursesController) Unpublish(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	course, err := cc.Courses.Unpublish(c.UserContext(), utils.CurrentUserID(c), courseID)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(course)
}

// Published godoc
// @Summary List published courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (cc *CoursesController) Published(c *fiber.Ctx) error {
	courses, err := cc.Courses.Published(c.UserContext())
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(courses)
}

// InstructorCourses godoc
// @Summary List the caller's own courses
// @Tags instructor
// @Produce json
// @Success 200 {array} models.Course
// @Security ApiKeyAuth
// @Router /instructor-courses [get]
func (cc *CoursesController) InstructorCourses(c *fiber.Ctx) error {
	courses, err := cc.Courses.InstructorCourses(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(courses)
}

// StudentCount godoc
// @Summary Number of students enrolled in one of the caller's courses
// @Tags instructor
// @Accept json
// @Produce json
// @Success 200 {integer} int
// @Security ApiKeyAuth
// @Router /instructor/student-count [post]
func (cc *CoursesController) StudentCount(c *fiber.Ctx) error {
	var input struct {
		CourseID uint `json:"courseId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	students, err := cc.Courses.Students(c.UserContext(), utils.CurrentUserID(c), input.CourseID)
	if err != nil {
		return utils.HandleError(c, cc.Logger, err)
	}
	return c.JSON(len(students))
}
