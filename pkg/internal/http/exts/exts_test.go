package exts

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleMember struct {
	UserID string `json:"user_id" validate:"required" message:"members[].user_id is required"`
}

type sampleRequest struct {
	Room    string         `params:"room" json:"-" validate:"required"`
	ID      string         `json:"id" validate:"required" message:"Sample id is required"`
	Image   string         `json:"image" validate:"omitempty,url"`
	Members []sampleMember `json:"members" validate:"omitempty,dive"`
}

type samplePath struct {
	Room string `params:"room" validate:"required"`
}

type sampleQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/rooms/:room", Validate[sampleRequest](), func(c *fiber.Ctx) error {
		data := Payload[sampleRequest](c)
		return Respond(c, fiber.StatusCreated, data, "created")
	})
	app.Get("/rooms", Validate[sampleQuery](), func(c *fiber.Ctx) error {
		return OK(c, Payload[sampleQuery](c))
	})
	app.Get("/peek/:room", Validate[samplePath](), func(c *fiber.Ctx) error {
		return OK(c, Payload[samplePath](c))
	})
	app.Post("/peek/:room", Validate[samplePath](), func(c *fiber.Ctx) error {
		return OK(c, Payload[samplePath](c))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return NotFound("Thing not found")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("kaboom")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Use(func(c *fiber.Ctx) error {
		return RouteNotFound(c.OriginalURL())
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if len(body) > 0 {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, jsoniter.Unmarshal(raw, &out))
	return res.StatusCode, out
}

func TestValidatePassesPayloadToHandler(t *testing.T) {
	status, out := do(t, newTestApp(), "POST", "/rooms/lobby", `{"id":"x","image":"https://example.com/a.png","members":[{"user_id":"u1"}]}`)

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "created", out["message"])
	data := out["data"].(map[string]any)
	assert.Equal(t, "x", data["id"])
}

func TestValidateCollectsEveryFailure(t *testing.T) {
	status, out := do(t, newTestApp(), "POST", "/rooms/lobby", `{"image":"not a url","members":[{"user_id":""}]}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Validation failed", out["error"])
	assert.NotContains(t, out, "data")

	details := out["details"].([]any)
	require.Len(t, details, 3)

	messages := map[string]string{}
	for _, item := range details {
		entry := item.(map[string]any)
		messages[entry["field"].(string)] = entry["message"].(string)
	}
	assert.Equal(t, "Sample id is required", messages["id"])
	assert.Equal(t, "image must be a valid URL", messages["image"])
	assert.Equal(t, "members[].user_id is required", messages["members[0].user_id"])
	assert.Contains(t, out["message"], "Sample id is required")
}

func TestValidateRejectsMalformedBody(t *testing.T) {
	status, out := do(t, newTestApp(), "POST", "/rooms/lobby", `{"id":`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Malformed request body", out["error"])
}

func TestValidateQuery(t *testing.T) {
	app := newTestApp()

	status, out := do(t, app, "GET", "/rooms?limit=20", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(20), out["data"].(map[string]any)["Limit"])

	status, out = do(t, app, "GET", "/rooms?limit=500", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "limit must be at most 100", out["message"])
}

func TestValidateKeepsRouteParams(t *testing.T) {
	app := newTestApp()

	status, out := do(t, app, "GET", "/peek/lobby?room=attic&Room=attic", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "lobby", out["data"].(map[string]any)["Room"])

	status, out = do(t, app, "POST", "/peek/lobby", `{"Room":"attic","room":"attic"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "lobby", out["data"].(map[string]any)["Room"])
}

func TestErrorHandlerMapping(t *testing.T) {
	app := newTestApp()

	status, out := do(t, app, "GET", "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Thing not found", out["error"])
	assert.Equal(t, "Thing not found", out["message"])

	status, out = do(t, app, "GET", "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "kaboom", out["message"])

	status, out = do(t, app, "GET", "/teapot", "")
	assert.Equal(t, fiber.StatusTeapot, status)
	assert.Equal(t, "short and stout", out["error"])

	status, out = do(t, app, "GET", "/nowhere?x=1", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Not Found - /nowhere?x=1", out["error"])
	assert.Equal(t, false, out["success"])
}

func TestErrorKindStatus(t *testing.T) {
	assert.Equal(t, 400, KindValidation.Status())
	assert.Equal(t, 401, KindAuthenticity.Status())
	assert.Equal(t, 404, KindNotFound.Status())
	assert.Equal(t, 404, KindRouteNotFound.Status())
	assert.Equal(t, 500, KindCollaborator.Status())

	err := CollaboratorFailed("Failed to get call", errors.New("timeout"))
	assert.Equal(t, "timeout", err.Message())
	assert.Equal(t, "Failed to get call: timeout", err.Error())
}
