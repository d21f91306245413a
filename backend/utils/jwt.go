package utils

import (
	"strings"
	"time"

	"scholarly/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// TokenCookie is the httpOnly cookie the login handler sets.
const TokenCookie = "token"

func GenerateJWTToken(userID uint, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(cfg.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// tokenFromRequest prefers the cookie and falls back to the Authorization header,
// with or without the Bearer scheme.
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookie); token != "" {
		return token
	}
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func ExtractUserIDFromToken(c *fiber.Ctx, cfg *config.Config) (uint, error) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	return uint(userIDFloat), nil
}

// CurrentUserID returns the id RequireSignin stored on the request.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func SetTokenCookie(c *fiber.Ctx, token string, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(cfg.JWTTTL),
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearTokenCookie(c *fiber.Ctx) {
	c.ClearCookie(TokenCookie)
}
