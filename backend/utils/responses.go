package utils

import (
	"errors"
	"log"
	"net/http"

	"scholarly/backend/services"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Error writes an ErrorResponse with the given status.
func Error(c *fiber.Ctx, status int, message string, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	}

	if len(details) > 0 && details[0] != nil {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// OK is the body of mutations that have nothing else to return.
func OK(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindUnauthorized, services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindWrongEnrollmentType, services.KindConflict:
		return fiber.StatusConflict
	case services.KindNoPendingSession, services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleError renders err for the client. Upstream causes are logged here and
// replaced by the service's generic message.
func HandleError(c *fiber.Ctx, logger *log.Logger, err error) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.Printf("%s %s: unexpected error: %v", c.Method(), c.Path(), err)
		return Error(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	if svcErr.Kind == services.KindUpstream {
		logger.Printf("%s %s: %v", c.Method(), c.Path(), svcErr)
	}

	var details interface{}
	if len(svcErr.Fields) > 0 {
		details = svcErr.Fields
	}
	return Error(c, StatusFor(svcErr.Kind), svcErr.Message, details)
}

// FiberErrorHandler renders errors that escape the handlers, such as unknown
// routes, oversized bodies and recovered panics.
func FiberErrorHandler(logger *log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return Error(c, fiberErr.Code, fiberErr.Message)
		}
		return HandleError(c, logger, err)
	}
}
