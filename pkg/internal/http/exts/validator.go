package exts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const payloadKey = "payload"

var validation = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validation.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "params", "query"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name == "-" {
				continue
			} else if len(name) > 0 {
				return name
			}
		}
		return field.Name
	})
}

// Validate binds the request into a T and rejects it before the route
// handler runs when any constraint fails. The handler reads the result
// back with Payload.
func Validate[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var data T
		if err := BindAndValidate(c, &data); err != nil {
			return err
		}
		c.Locals(payloadKey, data)
		return c.Next()
	}
}

func Payload[T any](c *fiber.Ctx) T {
	data, _ := c.Locals(payloadKey).(T)
	return data
}

// BindAndValidate fills out from the query string for reads or the JSON
// body for writes, then from the route params, and checks its constraints.
// Route params are bound last so the path always names the resource.
func BindAndValidate(c *fiber.Ctx, out any) error {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodDelete:
		if err := c.QueryParser(out); err != nil {
			return BadRequest("Malformed query string", err)
		}
	default:
		if len(c.Body()) > 0 {
			if err := c.BodyParser(out); err != nil {
				return BadRequest("Malformed request body", err)
			}
		}
	}

	if err := c.ParamsParser(out); err != nil {
		return BadRequest("Malformed route parameters", err)
	}

	return ValidateStruct(out)
}

// ValidateStruct reports every failing field at once.
func ValidateStruct(out any) error {
	err := validation.Struct(out)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return BadRequest("Validation failed", err)
	}

	root := reflect.TypeOf(out)
	return ValidationFailed(lo.Map(fields, func(item validator.FieldError, _ int) FieldError {
		name := fieldPath(item.Namespace())
		message := lookupMessage(root, item.StructNamespace())
		if len(message) == 0 {
			message = describe(name, item)
		}
		return FieldError{Field: name, Message: message}
	}))
}

// fieldPath drops the struct name validator puts in front of the namespace.
func fieldPath(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return path
}

// lookupMessage finds the message tag of the field at namespace, which is
// written with Go field names, e.g. "CreateCallRequest.Members[0].UserID".
func lookupMessage(t reflect.Type, namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return ""
	}

	var field reflect.StructField
	for _, part := range parts[1:] {
		name, _, _ := strings.Cut(part, "[")
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return ""
		}
		next, ok := t.FieldByName(name)
		if !ok {
			return ""
		}
		field, t = next, next.Type
	}
	return field.Tag.Get("message")
}

func describe(name string, item validator.FieldError) string {
	switch item.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", name, item.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", name, item.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, item.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", name, item.Tag())
	}
}
