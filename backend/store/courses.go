package store

import (
	"context"

	"scholarly/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseStore struct {
	db *gorm.DB
}

func NewCourseStore(db *gorm.DB) *CourseStore {
	return &CourseStore{db: db}
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("lessons.position ASC, lessons.id ASC")
}

func instructorSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// CreateWithGrant inserts the course and gives its instructor access in the same transaction.
func (s *CourseStore) CreateWithGrant(ctx context.Context, course *models.Course) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Instructor", "Lessons").Create(course).Error; err != nil {
			return translate(err)
		}
		grant := models.UserCourse{UserID: course.InstructorID, CourseID: course.ID}
		return translate(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error)
	})
}

func (s *CourseStore) FindByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Lessons", orderedLessons).
		Preload("Instructor", instructorSummary).
		First(&course, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (s *CourseStore) FindBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Lessons", orderedLessons).
		Preload("Instructor", instructorSummary).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (s *CourseStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Course{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (s *CourseStore) FindByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	courses := []models.Course{}
	if len(ids) == 0 {
		return courses, nil
	}
	err := s.db.WithContext(ctx).
		Preload("Instructor", instructorSummary).
		Where("id IN ?", ids).
		Find(&courses).Error
	if err != nil {
		return nil, translate(err)
	}
	return courses, nil
}

func (s *CourseStore) ListByInstructor(ctx context.Context, instructorID uint) ([]models.Course, error) {
	courses := []models.Course{}
	err := s.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, translate(err)
	}
	return courses, nil
}

func (s *CourseStore) ListPublished(ctx context.Context) ([]models.Course, error) {
	courses := []models.Course{}
	err := s.db.WithContext(ctx).
		Preload("Instructor", instructorSummary).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, translate(err)
	}
	return courses, nil
}

// Update writes the course's own columns; lessons are changed through the lesson methods.
func (s *CourseStore) Update(ctx context.Context, course *models.Course) error {
	err := s.db.WithContext(ctx).
		Model(course).
		Select("name", "description", "category", "image", "paid", "price").
		Updates(course).Error
	return translate(err)
}

func (s *CourseStore) SetPublished(ctx context.Context, courseID uint, published bool) error {
	res := s.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("published", published)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLesson appends the lesson after the course's current last lesson.
func (s *CourseStore) AddLesson(ctx context.Context, courseID uint, lesson *models.Lesson) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		if err := tx.Model(&models.Lesson{}).
			Where("course_id = ?", courseID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error; err != nil {
			return translate(err)
		}
		lesson.CourseID = courseID
		lesson.Position = maxPosition + 1
		return translate(tx.Create(lesson).Error)
	})
}

func (s *CourseStore) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	res := s.db.WithContext(ctx).
		Model(lesson).
		Where("course_id = ?", lesson.CourseID).
		Select("title", "slug", "content", "video", "free_preview").
		Updates(lesson)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CourseStore) RemoveLesson(ctx context.Context, courseID, lessonID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND course_id = ?", lessonID, courseID).
		Delete(&models.Lesson{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
