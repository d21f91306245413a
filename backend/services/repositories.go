package services

import (
	"context"

	"scholarly/backend/models"
)

// UserRepository is implemented by store.UserStore.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	AddCourse(ctx context.Context, userID, courseID uint) error
	HasCourse(ctx context.Context, userID, courseID uint) (bool, error)
	CourseIDs(ctx context.Context, userID uint) ([]uint, error)
	StudentIDs(ctx context.Context, courseID uint) ([]uint, error)
	SetStripeAccount(ctx context.Context, userID uint, accountID string) error
	ActivateSeller(ctx context.Context, userID uint, seller []byte) (*models.User, error)
	SetPendingSession(ctx context.Context, userID uint, sessionID string, courseID uint) error
	GrantFromSession(ctx context.Context, userID uint, sessionID string, courseID uint) error
	SetResetCode(ctx context.Context, userID uint, code string) error
	ResetPassword(ctx context.Context, email, code, passwordHash string) error
}

// CourseRepository is implemented by store.CourseStore.
type CourseRepository interface {
	CreateWithGrant(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id uint) (*models.Course, error)
	FindBySlug(ctx context.Context, slug string) (*models.Course, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Course, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]models.Course, error)
	ListPublished(ctx context.Context) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	SetPublished(ctx context.Context, courseID uint, published bool) error
	AddLesson(ctx context.Context, courseID uint, lesson *models.Lesson) error
	UpdateLesson(ctx context.Context, lesson *models.Lesson) error
	RemoveLesson(ctx context.Context, courseID, lessonID uint) error
}

// CompletionRepository is implemented by store.CompletionStore.
type CompletionRepository interface {
	MarkCompleted(ctx context.Context, userID, courseID, lessonID uint) error
	MarkIncomplete(ctx context.Context, userID, courseID, lessonID uint) error
	ListCompleted(ctx context.Context, userID, courseID uint) ([]uint, error)
}
