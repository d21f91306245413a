package services

import (
	"context"
	"errors"
	"log"

	"scholarly/backend/models"
	"scholarly/backend/store"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
)

// CourseService lets instructors author courses. Every mutation is restricted to
// the course's own instructor.
type CourseService struct {
	courses CourseRepository
	users   UserRepository
	logger  *log.Logger
}

func NewCourseService(courses CourseRepository, users UserRepository, logger *log.Logger) *CourseService {
	return &CourseService{courses: courses, users: users, logger: logger}
}

type CourseInput struct {
	Name        string        `json:"name" validate:"required,max=320"`
	Description string        `json:"description" validate:"max=10000"`
	Category    string        `json:"category" validate:"max=100"`
	Image       *models.Asset `json:"image"`
	Paid        bool          `json:"paid"`
	Price       float64       `json:"price" validate:"gte=0"`
}

func (in CourseInput) check() error {
	if err := validateInput(in); err != nil {
		return err
	}
	if in.Paid && in.Price <= 0 {
		return Validation("price is required for paid courses", map[string]string{"price": "price is required for paid courses"})
	}
	return nil
}

type LessonInput struct {
	Title       string        `json:"title" validate:"required,max=320"`
	Content     string        `json:"content" validate:"max=200000"`
	Video       *models.Asset `json:"video"`
	FreePreview bool          `json:"free_preview"`
}

func ensureOwner(course *models.Course, userID uint) error {
	if !course.IsOwnedBy(userID) {
		return Unauthorized("Only the course instructor can change this course")
	}
	return nil
}

func assetOrZero(a *models.Asset) datatypes.JSONType[models.Asset] {
	if a == nil {
		return datatypes.NewJSONType(models.Asset{})
	}
	return datatypes.NewJSONType(*a)
}

// Create stores a new course whose slug is derived from its name. The instructor
// is granted access to the course in the same write.
func (s *CourseService) Create(ctx context.Context, instructorID uint, in CourseInput) (*models.Course, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	courseSlug := slug.Make(in.Name)
	if courseSlug == "" {
		return nil, Validation("name must contain letters or digits", map[string]string{"name": "name must contain letters or digits"})
	}

	exists, err := s.courses.SlugExists(ctx, courseSlug)
	if err != nil {
		return nil, Upstream("check course slug", err)
	}
	if exists {
		return nil, Conflict("Title is taken")
	}

	course := &models.Course{
		Name:         in.Name,
		Slug:         courseSlug,
		Description:  in.Description,
		Category:     in.Category,
		Image:        assetOrZero(in.Image),
		Paid:         in.Paid,
		Price:        in.Price,
		InstructorID: instructorID,
	}
	if err := s.courses.CreateWithGrant(ctx, course); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, Conflict("Title is taken")
		}
		return nil, Upstream("create course", err)
	}
	s.logger.Printf("course %d (%s) created by instructor %d", course.ID, course.Slug, instructorID)
	return course, nil
}

func (s *CourseService) Read(ctx context.Context, courseSlug string) (*models.Course, error) {
	course, err := s.courses.FindBySlug(ctx, courseSlug)
	if err != nil {
		return nil, fromStore("find course", err, "Course not found")
	}
	return course, nil
}

func (s *CourseService) owned(ctx context.Context, userID uint, courseSlug string) (*models.Course, error) {
	course, err := s.Read(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(course, userID); err != nil {
		return nil, err
	}
	return course, nil
}

// Update replaces the editable course fields. The slug stays what it was at creation.
func (s *CourseService) Update(ctx context.Context, userID uint, courseSlug string, in CourseInput) (*models.Course, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	course, err := s.owned(ctx, userID, courseSlug)
	if err != nil {
		return nil, err
	}

	course.Name = in.Name
	course.Description = in.Description
	course.Category = in.Category
	if in.Image != nil {
		course.Image = assetOrZero(in.Image)
	}
	course.Paid = in.Paid
	course.Price = in.Price

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, fromStore("update course", err, "Course not found")
	}
	return course, nil
}

func (s *CourseService) AddLesson(ctx context.Context, userID uint, courseSlug string, in LessonInput) (*models.Lesson, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	course, err := s.owned(ctx, userID, courseSlug)
	if err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		Title:       in.Title,
		Slug:        slug.Make(in.Title),
		Content:     in.Content,
		Video:       assetOrZero(in.Video),
		FreePreview: in.FreePreview,
	}
	if err := s.courses.AddLesson(ctx, course.ID, lesson); err != nil {
		return nil, fromStore("add lesson", err, "Course not found")
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(ctx context.Context, userID uint, courseSlug string, lessonID uint, in LessonInput) (*models.Lesson, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	course, err := s.owned(ctx, userID, courseSlug)
	if err != nil {
		return nil, err
	}
	lesson, ok := course.LessonByID(lessonID)
	if !ok {
		return nil, NotFound("Lesson not found")
	}

	lesson.Title = in.Title
	lesson.Slug = slug.Make(in.Title)
	lesson.Content = in.Content
	if in.Video != nil {
		lesson.Video = assetOrZero(in.Video)
	}
	lesson.FreePreview = in.FreePreview

	if err := s.courses.UpdateLesson(ctx, lesson); err != nil {
		return nil, fromStore("update lesson", err, "Lesson not found")
	}
	return lesson, nil
}

func (s *CourseService) RemoveLesson(ctx context.Context, userID uint, courseSlug string, lessonID uint) (*models.Course, error) {
	course, err := s.owned(ctx, userID, courseSlug)
	if err != nil {
		return nil, err
	}
	if err := s.courses.RemoveLesson(ctx, course.ID, lessonID); err != nil {
		return nil, fromStore("remove lesson", err, "Lesson not found")
	}
	remaining := course.Lessons[:0]
	for _, l := range course.Lessons {
		if l.ID != lessonID {
			remaining = append(remaining, l)
		}
	}
	course.Lessons = remaining
	return course, nil
}

func (s *CourseService) Publish(ctx context.Context, userID, courseID uint) (*models.Course, error) {
	return s.setPublished(ctx, userID, courseID, true)
}

func (s *CourseService) Unpublish(ctx context.Context, userID, courseID uint) (*models.Course, error) {
	return s.setPublished(ctx, userID, courseID, false)
}

func (s *CourseService) setPublished(ctx context.Context, userID, courseID uint, published bool) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fromStore("find course", err, "Course not found")
	}
	if err := ensureOwner(course, userID); err != nil {
		return nil, err
	}
	if err := s.courses.SetPublished(ctx, course.ID, published); err != nil {
		return nil, fromStore("set published", err, "Course not found")
	}
	course.Published = published
	return course, nil
}

func (s *CourseService) Published(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.ListPublished(ctx)
	if err != nil {
		return nil, Upstream("list published courses", err)
	}
	return courses, nil
}

func (s *CourseService) InstructorCourses(ctx context.Context, instructorID uint) ([]models.Course, error) {
	courses, err := s.courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, Upstream("list instructor courses", err)
	}
	return courses, nil
}

// Students lists the users enrolled in a course the caller teaches.
func (s *CourseService) Students(ctx context.Context, userID, courseID uint) ([]uint, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fromStore("find course", err, "Course not found")
	}
	if err := ensureOwner(course, userID); err != nil {
		return nil, err
	}
	ids, err := s.users.StudentIDs(ctx, course.ID)
	if err != nil {
		return nil, Upstream("list students", err)
	}
	return ids, nil
}
