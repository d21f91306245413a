package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"scholarly/backend/mailer"
	"scholarly/backend/models"
	"scholarly/backend/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  UserRepository
	mailer mailer.Mailer
	logger *log.Logger
}

func NewAuthService(users UserRepository, m mailer.Mailer, logger *log.Logger) *AuthService {
	return &AuthService{users: users, mailer: m, logger: logger}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=64"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=64"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, Conflict("Email is taken")
	case !errors.Is(err, store.ErrNotFound):
		return nil, Upstream("find user by email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Upstream("hash password", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Role:     []string{models.RoleSubscriber},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, Conflict("Email is taken")
		}
		return nil, Upstream("create user", err)
	}
	return user, nil
}

// Login checks the credentials and returns the user they belong to.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Validation("Invalid email or password", nil)
		}
		return nil, Upstream("find user by email", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, Validation("Invalid email or password", nil)
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromStore("find user", err, "User not found")
	}
	return user, nil
}

// ForgotPassword stores a short reset code on the user and emails it.
// An unknown email succeeds without sending anything.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return Validation("email is required", map[string]string{"email": "email is required"})
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return Upstream("find user by email", err)
	}

	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	body, err := mailer.RenderPasswordReset(user.Name, code)
	if err != nil {
		return Upstream("render reset email", err)
	}
	if err := s.users.SetResetCode(ctx, user.ID, code); err != nil {
		return fromStore("store reset code", err, "User not found")
	}
	if err := s.mailer.Send(ctx, user.Email, "Reset password", body); err != nil {
		return Upstream("send reset email", err)
	}
	s.logger.Printf("password reset code sent to user %d", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if err := validateInput(in); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return Upstream("hash password", err)
	}
	if err := s.users.ResetPassword(ctx, in.Email, in.Code, string(hashed)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Validation("Invalid or expired reset code", nil)
		}
		return Upstream("reset password", err)
	}
	return nil
}
