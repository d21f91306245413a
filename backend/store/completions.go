package store

import (
	"context"
	"time"

	"scholarly/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionStore struct {
	db *gorm.DB
}

func NewCompletionStore(db *gorm.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

// MarkCompleted creates the (user, course) record on first use and adds lessonID to it.
// Both steps use ON CONFLICT so concurrent first completions share one record.
func (s *CompletionStore) MarkCompleted(ctx context.Context, userID, courseID, lessonID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := models.Completion{UserID: userID, CourseID: courseID}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": time.Now()}),
		}).Create(&record).Error
		if err != nil {
			return translate(err)
		}
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error; err != nil {
			return translate(err)
		}
		lesson := models.CompletionLesson{CompletionID: record.ID, LessonID: lessonID}
		return translate(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lesson).Error)
	})
}

// MarkIncomplete removes lessonID from the record. A missing record or lesson is not an error.
func (s *CompletionStore) MarkIncomplete(ctx context.Context, userID, courseID, lessonID uint) error {
	db := s.db.WithContext(ctx)
	record := db.Model(&models.Completion{}).
		Select("id").
		Where("user_id = ? AND course_id = ?", userID, courseID)
	err := db.Where("lesson_id = ? AND completion_id IN (?)", lessonID, record).
		Delete(&models.CompletionLesson{}).Error
	return translate(err)
}

func (s *CompletionStore) ListCompleted(ctx context.Context, userID, courseID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).
		Model(&models.CompletionLesson{}).
		Joins("JOIN completions ON completions.id = completion_lessons.completion_id").
		Where("completions.user_id = ? AND completions.course_id = ?", userID, courseID).
		Order("completion_lessons.lesson_id").
		Pluck("completion_lessons.lesson_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}
