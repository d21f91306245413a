package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Asset points at an object in the media bucket.
type Asset struct {
	Bucket   string `json:"Bucket"`
	Key      string `json:"Key"`
	Location string `json:"Location"`
}

func (a Asset) IsZero() bool {
	return a.Key == ""
}

type Course struct {
	gorm.Model
	Name         string                    `gorm:"not null" json:"name"`
	Slug         string                    `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string                    `json:"description"`
	Category     string                    `json:"category"`
	Image        datatypes.JSONType[Asset] `gorm:"type:jsonb" json:"image"`
	Paid         bool                      `json:"paid"`
	Price        float64                   `json:"price"`
	Published    bool                      `json:"published"`
	InstructorID uint                      `gorm:"not null;index" json:"instructor_id"`
	Instructor   *User                     `json:"instructor,omitempty"`
	Lessons      []Lesson                  `gorm:"constraint:OnDelete:CASCADE" json:"lessons"`
}

// IsOwnedBy reports whether userID is the course's recorded instructor.
func (c *Course) IsOwnedBy(userID uint) bool {
	return c.InstructorID == userID
}

func (c *Course) LessonByID(lessonID uint) (*Lesson, bool) {
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			return &c.Lessons[i], true
		}
	}
	return nil, false
}

type Lesson struct {
	gorm.Model
	CourseID    uint                      `gorm:"not null;index" json:"course_id"`
	Position    int                       `json:"position"`
	Title       string                    `gorm:"not null" json:"title"`
	Slug        string                    `json:"slug"`
	Content     string                    `json:"content"`
	Video       datatypes.JSONType[Asset] `gorm:"type:jsonb" json:"video"`
	FreePreview bool                      `json:"free_preview"`
}
