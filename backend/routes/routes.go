package routes

import (
	"log"
	"time"

	"scholarly/backend/config"
	"scholarly/backend/controllers"
	"scholarly/backend/middleware"
	"scholarly/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

// CSRFContextKey is where the csrf middleware leaves the token for the current request.
const CSRFContextKey = "csrf"

// CSRF is the double submit cookie check: unsafe methods must echo the _csrf
// cookie in the X-Csrf-Token header. Rejections are 403.
func CSRF(cfg *config.Config) fiber.Handler {
	return csrf.New(csrf.Config{
		CookieName:     "_csrf",
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     2 * time.Hour,
		ContextKey:     CSRFContextKey,
	})
}

type Services struct {
	Auth        *services.AuthService
	Courses     *services.CourseService
	Enrollments *services.EnrollmentService
	Completions *services.CompletionService
	Instructors *services.InstructorService
	Media       *services.MediaService
}

func SetupRoutes(app *fiber.App, svc *Services, cfg *config.Config, logger *log.Logger) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the Scholarly API"})
	})

	api := app.Group("/api")

	// Middleware
	requireSignin := middleware.RequireSignin(cfg)
	isInstructor := middleware.IsInstructor(svc.Instructors, logger)
	isEnrolled := middleware.IsEnrolled(svc.Enrollments, logger)

	api.Get("/csrf-token", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"csrfToken": c.Locals(CSRFContextKey)})
	})

	// Auth routes
	authController := controllers.NewAuthController(svc.Auth, cfg, logger)
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Get("/logout", authController.Logout)
	api.Get("/current-user", requireSignin, authController.CurrentUser)
	api.Post("/forgot-password", authController.ForgotPassword)
	api.Post("/reset-password", authController.ResetPassword)

	// Media routes
	mediaController := controllers.NewMediaController(svc.Media, logger)
	api.Post("/course/upload-image", requireSignin, mediaController.UploadImage)
	api.Post("/course/remove-image", requireSignin, mediaController.RemoveImage)
	api.Post("/course/video-upload/:slug", requireSignin, mediaController.VideoUpload)
	api.Post("/course/video-remove/:slug", requireSignin, mediaController.VideoRemove)

	// Course routes
	coursesController := controllers.NewCoursesController(svc.Courses, logger)
	api.Get("/courses", coursesController.Published)
	api.Post("/course", requireSignin, isInstructor, coursesController.Create)
	api.Put("/course/publish/:courseId", requireSignin, coursesController.Publish)
	api.Put("/course/unpublish/:courseId", requireSignin, coursesController.Unpublish)
	api.Post("/course/lesson/:slug", requireSignin, coursesController.AddLesson)
	api.Put("/course/lesson/:slug/:lessonId", requireSignin, coursesController.UpdateLesson)
	api.Get("/course/:slug", coursesController.Read)
	api.Put("/course/:slug", requireSignin, coursesController.Update)
	api.Delete("/course/:slug/:lessonId", requireSignin, coursesController.RemoveLesson)

	// Enrollment routes
	enrollmentController := controllers.NewEnrollmentController(svc.Enrollments, logger)
	api.Get("/check-enrollment/:courseId", requireSignin, enrollmentController.CheckEnrollment)
	api.Post("/free-enrollment/:courseId", requireSignin, enrollmentController.FreeEnrollment)
	api.Post("/paid-enrollment/:courseId", requireSignin, enrollmentController.PaidEnrollment)
	api.Get("/stripe-success/:courseId", requireSignin, enrollmentController.StripeSuccess)
	api.Get("/user-courses", requireSignin, enrollmentController.UserCourses)
	api.Get("/user/course/:slug", requireSignin, isEnrolled, enrollmentController.EnrolledCourse)

	// Progress routes
	progressController := controllers.NewProgressController(svc.Completions, logger)
	api.Post("/mark-completed", requireSignin, progressController.MarkCompleted)
	api.Post("/mark-incomplete", requireSignin, progressController.MarkIncomplete)
	api.Post("/list-completed", requireSignin, progressController.ListCompleted)

	// Instructor routes
	instructorController := controllers.NewInstructorController(svc.Instructors, logger)
	api.Post("/make-instructor", requireSignin, instructorController.MakeInstructor)
	api.Post("/get-account-status", requireSignin, instructorController.AccountStatus)
	api.Get("/current-instructor", requireSignin, instructorController.CurrentInstructor)
	api.Get("/instructor-courses", requireSignin, isInstructor, coursesController.InstructorCourses)
	api.Post("/instructor/student-count", requireSignin, isInstructor, coursesController.StudentCount)
	api.Get("/instructor/balance", requireSignin, isInstructor, instructorController.Balance)
	api.Get("/instructor/payout-settings", requireSignin, isInstructor, instructorController.PayoutSettings)
}
