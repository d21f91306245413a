package controllers

import (
	"log"

	"scholarly/backend/config"
	"scholarly/backend/services"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Auth   *services.AuthService
	Cfg    *config.Config
	Logger *log.Logger
}

func NewAuthController(auth *services.AuthService, cfg *config.Config, logger *log.Logger) *AuthController {
	return &AuthController{Auth: auth, Cfg: cfg, Logger: logger}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a Subscriber account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "User registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if _, err := ac.Auth.Register(c.UserContext(), input); err != nil {
		return utils.HandleError(c, ac.Logger, err)
	}
	return utils.OK(c)
}

// Login godoc
// @Summary User login
// @Description Authenticates the user and sets the httpOnly token cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginInput true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	user, err := ac.Auth.Login(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, ac.Logger, err)
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.HandleError(c, ac.Logger, services.Upstream("sign token", err))
	}
	utils.SetTokenCookie(c, token, ac.Cfg)

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout godoc
// @Summary User logout
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /logout [get]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	utils.ClearTokenCookie(c)
	return c.JSON(fiber.Map{"message": "Signout success"})
}

// CurrentUser godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /current-user [get]
func (ac *AuthController) CurrentUser(c *fiber.Ctx) error {
	user, err := ac.Auth.CurrentUser(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.HandleError(c, ac.Logger, err)
	}
	return c.JSON(fiber.Map{"ok": true, "user": user})
}

// ForgotPassword godoc
// @Summary Email a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /forgot-password [post]
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := ac.Auth.ForgotPassword(c.UserContext(), input.Email); err != nil {
		return utils.HandleError(c, ac.Logger, err)
	}
	return utils.OK(c)
}

// ResetPassword godoc
// @Summary Reset the password with an emailed code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.ResetPasswordInput true "Reset data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /reset-password [post]
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var input services.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := ac.Auth.ResetPassword(c.UserContext(), input); err != nil {
		return utils.HandleError(c, ac.Logger, err)
	}
	return utils.OK(c)
}
