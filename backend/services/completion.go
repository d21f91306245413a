package services

import (
	"context"
)

// CompletionService tracks which lessons a user finished in a course.
type CompletionService struct {
	completions CompletionRepository
}

func NewCompletionService(completions CompletionRepository) *CompletionService {
	return &CompletionService{completions: completions}
}

type LessonRef struct {
	CourseID uint `json:"courseId" validate:"required"`
	LessonID uint `json:"lessonId" validate:"required"`
}

func (s *CompletionService) MarkCompleted(ctx context.Context, userID uint, ref LessonRef) error {
	if err := validateInput(ref); err != nil {
		return err
	}
	if err := s.completions.MarkCompleted(ctx, userID, ref.CourseID, ref.LessonID); err != nil {
		return fromStore("mark lesson completed", err, "Course not found")
	}
	return nil
}

func (s *CompletionService) MarkIncomplete(ctx context.Context, userID uint, ref LessonRef) error {
	if err := validateInput(ref); err != nil {
		return err
	}
	if err := s.completions.MarkIncomplete(ctx, userID, ref.CourseID, ref.LessonID); err != nil {
		return fromStore("mark lesson incomplete", err, "Course not found")
	}
	return nil
}

// ListCompleted returns the completed lesson ids, empty when nothing was completed yet.
func (s *CompletionService) ListCompleted(ctx context.Context, userID, courseID uint) ([]uint, error) {
	if courseID == 0 {
		return nil, Validation("courseId is required", map[string]string{"courseId": "courseId is required"})
	}
	ids, err := s.completions.ListCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, fromStore("list completed lessons", err, "Course not found")
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}
