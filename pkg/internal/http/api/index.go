package api

import (
	"errors"

	"git.solsynth.dev/hypernet/calling/pkg/internal/config"
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/calling/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

// StatusReporter tells the health endpoint what the last platform probe saw.
type StatusReporter interface {
	Status() services.HeartbeatStatus
}

type Handler struct {
	platform  services.Platform
	webhooks  *services.WebhookDispatcher
	heartbeat StatusReporter
	webhook   config.WebhookConfig
}

func NewHandler(platform services.Platform, webhooks *services.WebhookDispatcher, heartbeat StatusReporter, webhook config.WebhookConfig) *Handler {
	return &Handler{
		platform:  platform,
		webhooks:  webhooks,
		heartbeat: heartbeat,
		webhook:   webhook,
	}
}

func (v *Handler) MapAPIs(app *fiber.App, baseURL string) {
	app.Get("/health", v.getHealth).Name("Health")

	api := app.Group(baseURL).Name("API")
	{
		api.Get("/health", v.getHealth)

		tokens := api.Group("/tokens").Name("Tokens API")
		{
			tokens.Post("/user", exts.Validate[userTokenRequest](), v.generateUserToken)
			tokens.Post("/call", exts.Validate[callTokenRequest](), v.generateCallToken)
		}

		users := api.Group("/users").Name("Users API")
		{
			users.Get("/", exts.Validate[listUsersRequest](), v.listUsers)
			users.Post("/", exts.Validate[createUserRequest](), v.createUser)
			users.Get("/:userId", exts.Validate[userRequest](), v.getUser)
			users.Put("/:userId", exts.Validate[updateUserRequest](), v.updateUser)
			users.Delete("/:userId", exts.Validate[userRequest](), v.deleteUser)
		}

		calls := api.Group("/calls").Name("Calls API")
		{
			calls.Get("/", v.listCalls)
			calls.Post("/", exts.Validate[createCallRequest](), v.createCall)
			calls.Get("/:callType/:callId", exts.Validate[callRequest](), v.getCall)
			calls.Put("/:callType/:callId", exts.Validate[updateCallRequest](), v.updateCall)
			calls.Post("/:callType/:callId/end", exts.Validate[callRequest](), v.endCall)
		}

		api.Post("/webhooks", v.verifyWebhookSignature, v.receiveWebhook).Name("Webhooks API")
	}
}

// platformError turns a collaborator failure into the error the client sees.
func platformError(summary string, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return exts.NotFound("User not found")
	case errors.Is(err, services.ErrCallNotFound):
		return exts.NotFound("Call not found")
	default:
		return exts.CollaboratorFailed(summary, err)
	}
}
