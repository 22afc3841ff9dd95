package api

import (
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	"git.solsynth.dev/hypernet/calling/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

const signatureHeader = "x-signature"

func (v *Handler) verifyWebhookSignature(c *fiber.Ctx) error {
	signature := c.Get(signatureHeader)
	if len(signature) == 0 {
		return exts.Unauthorized("Missing webhook signature")
	}

	if len(v.webhook.Secret) == 0 {
		log.Warn().Msg("Webhook secret is not configured, skipping signature verification...")
		return c.Next()
	}

	if !services.VerifyWebhookSignature(v.webhook.Secret, c.Body(), signature, v.webhook.SignatureMode) {
		return exts.Unauthorized("Invalid webhook signature")
	}
	return c.Next()
}

func (v *Handler) receiveWebhook(c *fiber.Ctx) error {
	var event models.WebhookEvent
	if err := jsoniter.Unmarshal(c.Body(), &event); err != nil {
		return exts.BadRequest("Malformed webhook event", err)
	}

	logger := log.With().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Logger()
	ctx := logger.WithContext(c.UserContext())

	v.webhooks.Dispatch(ctx, event)

	return exts.Respond(c, fiber.StatusOK, nil, "Webhook received")
}
