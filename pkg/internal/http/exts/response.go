package exts

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Envelope wraps every response body. Data is never set when Success is false.
type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func OK(c *fiber.Ctx, data any) error {
	return Respond(c, fiber.StatusOK, data, "")
}

// ErrorHandler is the last stop of every failed request.
func ErrorHandler(c *fiber.Ctx, err error) error {
	out := Envelope{Success: false}
	var status int

	var appErr *Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status = appErr.Kind.Status()
		out.Error = appErr.Summary
		out.Message = appErr.Message()
		out.Details = appErr.Details
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		out.Error = fiberErr.Message
		out.Message = fiberErr.Message
	default:
		status = c.Response().StatusCode()
		if status == fiber.StatusOK || status < fiber.StatusBadRequest {
			status = fiber.StatusInternalServerError
		}
		out.Error = "Internal server error"
		if len(err.Error()) > 0 {
			out.Error = err.Error()
		}
		out.Message = out.Error
	}

	event := log.Debug()
	if status >= fiber.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("method", c.Method()).
		Str("path", c.OriginalURL()).
		Msg("Request failed.")

	return c.Status(status).JSON(out)
}
