package models

import "time"

// Completion groups the lessons one user finished in one course.
// There is at most one row per (UserID, CourseID).
type Completion struct {
	ID        uint               `gorm:"primarykey" json:"id"`
	UserID    uint               `gorm:"uniqueIndex:idx_completion_user_course;not null" json:"user_id"`
	CourseID  uint               `gorm:"uniqueIndex:idx_completion_user_course;not null" json:"course_id"`
	Lessons   []CompletionLesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type CompletionLesson struct {
	CompletionID uint      `gorm:"primaryKey" json:"completion_id"`
	LessonID     uint      `gorm:"primaryKey" json:"lesson_id"`
	CreatedAt    time.Time `json:"created_at"`
}
