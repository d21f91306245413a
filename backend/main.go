package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scholarly/backend/config"
	"scholarly/backend/mailer"
	"scholarly/backend/media"
	"scholarly/backend/middleware"
	"scholarly/backend/payments"
	"scholarly/backend/routes"
	"scholarly/backend/services"
	"scholarly/backend/store"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

var (
	_ services.UserRepository       = (*store.UserStore)(nil)
	_ services.CourseRepository     = (*store.CourseStore)(nil)
	_ services.CompletionRepository = (*store.CompletionStore)(nil)
	_ payments.Processor            = (*payments.StripeProcessor)(nil)
	_ media.Storage                 = (*media.S3Storage)(nil)
	_ mailer.Mailer                 = (*mailer.SMTPMailer)(nil)
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := utils.InitLogger(utils.LoggerConfig{EnableColors: !cfg.IsProduction()})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	storage, err := media.NewS3Storage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Error initializing media storage: %v", err)
	}

	users := store.NewUserStore(db)
	courses := store.NewCourseStore(db)
	completions := store.NewCompletionStore(db)
	processor := payments.NewStripeProcessor(cfg.StripeSecret)

	svc := &routes.Services{
		Auth:    services.NewAuthService(users, mailer.NewSMTPMailer(cfg, logger), logger),
		Courses: services.NewCourseService(courses, users, logger),
		Enrollments: services.NewEnrollmentService(users, courses, processor, services.EnrollmentOptions{
			FeePercent: cfg.PlatformFeePercent,
			Currency:   cfg.Currency,
			SuccessURL: cfg.StripeSuccessURL,
			CancelURL:  cfg.StripeCancelURL,
		}),
		Completions: services.NewCompletionService(completions),
		Instructors: services.NewInstructorService(users, processor, services.InstructorOptions{
			OnboardingRedirectURL: cfg.StripeRedirectURL,
		}),
		Media: services.NewMediaService(storage, courses),
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    5 * 1024 * 1024,
		ErrorHandler: utils.FiberErrorHandler(logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Csrf-Token",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(routes.CSRF(cfg))

	routes.SetupRoutes(app, svc, cfg, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Println("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	// Start server
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}
