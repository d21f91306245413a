package store

import (
	"context"

	"scholarly/backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if len(user.Role) == 0 {
		user.Role = []string{models.RoleSubscriber}
	}
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// AddCourse grants access to a course. Granting twice leaves a single entry.
func (s *UserStore) AddCourse(ctx context.Context, userID, courseID uint) error {
	grant := models.UserCourse{UserID: userID, CourseID: courseID}
	return translate(s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error)
}

func (s *UserStore) HasCourse(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (s *UserStore) CourseIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.UserCourse{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

// StudentIDs lists the users holding a grant for courseID.
func (s *UserStore) StudentIDs(ctx context.Context, courseID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.UserCourse{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

func (s *UserStore) SetStripeAccount(ctx context.Context, userID uint, accountID string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("stripe_account_id", accountID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ActivateSeller stores the payout account snapshot and adds the Instructor role in one statement.
func (s *UserStore) ActivateSeller(ctx context.Context, userID uint, seller []byte) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"stripe_seller": datatypes.JSON(seller),
			"role": gorm.Expr(
				"CASE WHEN ? = ANY(role) THEN role ELSE array_append(role, ?) END",
				models.RoleInstructor, models.RoleInstructor,
			),
		})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, userID)
}

// SetPendingSession records the checkout the user was sent to, replacing any earlier one.
func (s *UserStore) SetPendingSession(ctx context.Context, userID uint, sessionID string, courseID uint) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"stripe_session_id":        sessionID,
			"stripe_session_course_id": courseID,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GrantFromSession clears the pending session and grants the course in one transaction.
// It returns ErrNoPendingSession when the stored session no longer matches, so a
// second confirmation of the same checkout grants nothing.
func (s *UserStore) GrantFromSession(ctx context.Context, userID uint, sessionID string, courseID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND stripe_session_id = ? AND stripe_session_course_id = ?", userID, sessionID, courseID).
			Updates(map[string]interface{}{
				"stripe_session_id":        "",
				"stripe_session_course_id": nil,
			})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoPendingSession
		}
		grant := models.UserCourse{UserID: userID, CourseID: courseID}
		return translate(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error)
	})
}

func (s *UserStore) SetResetCode(ctx context.Context, userID uint, code string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_reset_code", code)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword swaps the password hash if code matches the stored reset code, then clears the code.
func (s *UserStore) ResetPassword(ctx context.Context, email, code, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND password_reset_code = ? AND password_reset_code <> ''", email, code).
		Updates(map[string]interface{}{
			"password":            passwordHash,
			"password_reset_code": "",
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
