package exts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthenticity
	KindNotFound
	KindCollaborator
	KindRouteNotFound
)

func (v ErrorKind) Status() int {
	switch v {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindAuthenticity:
		return fiber.StatusUnauthorized
	case KindNotFound, KindRouteNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is what handlers return on failure. Summary goes to the envelope's
// error field, the wrapped error (or the summary) to its message.
type Error struct {
	Kind    ErrorKind
	Summary string
	Err     error
	Details []FieldError
}

func (v *Error) Error() string {
	if v.Err != nil {
		return fmt.Sprintf("%s: %v", v.Summary, v.Err)
	}
	return v.Summary
}

func (v *Error) Unwrap() error {
	return v.Err
}

func (v *Error) Message() string {
	if v.Err != nil {
		return v.Err.Error()
	}
	return v.Summary
}

func ValidationFailed(details []FieldError) *Error {
	messages := make([]string, len(details))
	for idx, item := range details {
		messages[idx] = item.Message
	}
	return &Error{
		Kind:    KindValidation,
		Summary: "Validation failed",
		Err:     errors.New(strings.Join(messages, "; ")),
		Details: details,
	}
}

func BadRequest(summary string, err error) *Error {
	return &Error{Kind: KindValidation, Summary: summary, Err: err}
}

func Unauthorized(summary string) *Error {
	return &Error{Kind: KindAuthenticity, Summary: summary}
}

func NotFound(summary string) *Error {
	return &Error{Kind: KindNotFound, Summary: summary}
}

func CollaboratorFailed(summary string, err error) *Error {
	return &Error{Kind: KindCollaborator, Summary: summary, Err: err}
}

func RouteNotFound(path string) *Error {
	return &Error{Kind: KindRouteNotFound, Summary: fmt.Sprintf("Not Found - %s", path)}
}
