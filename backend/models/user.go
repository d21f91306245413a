package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleSubscriber = "Subscriber"
	RoleInstructor = "Instructor"
	RoleAdmin      = "Admin"
)

type User struct {
	gorm.Model
	Name              string         `gorm:"not null" json:"name"`
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`
	Password          string         `gorm:"not null" json:"-"`
	Picture           string         `gorm:"default:/avatar.png" json:"picture"`
	Role              pq.StringArray `gorm:"type:text[];default:'{Subscriber}'" json:"role"`
	PasswordResetCode string         `json:"-"`
	StripeAccountID   string         `json:"-"`
	StripeSeller      datatypes.JSON `gorm:"type:jsonb" json:"-"`
	// Only one checkout may be pending per user; a new one replaces the old.
	StripeSessionID       string `json:"-"`
	StripeSessionCourseID *uint  `json:"-"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Role {
		if r == role {
			return true
		}
	}
	return false
}

// HasPendingSession reports whether a checkout was started for courseID and not yet confirmed.
func (u *User) HasPendingSession(courseID uint) bool {
	return u.StripeSessionID != "" &&
		u.StripeSessionCourseID != nil &&
		*u.StripeSessionCourseID == courseID
}

// UserCourse is one entry of a user's course set.
type UserCourse struct {
	UserID    uint `gorm:"primaryKey"`
	CourseID  uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
