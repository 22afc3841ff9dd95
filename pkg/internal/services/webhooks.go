package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"git.solsynth.dev/hypernet/calling/pkg/internal/config"
	"git.solsynth.dev/hypernet/calling/pkg/internal/metrics"
	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	"github.com/rs/zerolog"
)

// SignWebhookBody returns the hex HMAC-SHA256 of body under secret.
// In compact mode insignificant whitespace is stripped first, key order is kept.
func SignWebhookBody(secret string, body []byte, mode string) (string, error) {
	if mode == config.SignatureModeCompact {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err != nil {
			return "", fmt.Errorf("unable to compact webhook body: %v", err)
		}
		body = buf.Bytes()
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func VerifyWebhookSignature(secret string, body []byte, signature string, mode string) bool {
	expected, err := SignWebhookBody(secret, body, mode)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookHook reacts to one kind of platform event. The logger of the
// request is reachable through zerolog.Ctx(ctx).
type WebhookHook func(ctx context.Context, event models.WebhookEvent)

type WebhookDispatcher struct {
	hooks   map[string]WebhookHook
	metrics *metrics.Metrics
}

func NewWebhookDispatcher(m *metrics.Metrics) *WebhookDispatcher {
	v := &WebhookDispatcher{hooks: make(map[string]WebhookHook), metrics: m}

	for kind, message := range map[string]string{
		models.EventCallCreated:          "Call created.",
		models.EventCallEnded:            "Call ended.",
		models.EventCallLiveStarted:      "Call started.",
		models.EventCallMemberAdded:      "Member added to call.",
		models.EventCallMemberRemoved:    "Member removed from call.",
		models.EventCallRecordingStarted: "Recording started.",
		models.EventCallRecordingStopped: "Recording stopped.",
	} {
		v.On(kind, logHook(message))
	}

	return v
}

func logHook(message string) WebhookHook {
	return func(ctx context.Context, event models.WebhookEvent) {
		zerolog.Ctx(ctx).Info().Str("cid", event.CallCID).Msg(message)
	}
}

// On installs hook for events of the given type, replacing any previous one.
func (v *WebhookDispatcher) On(kind string, hook WebhookHook) {
	v.hooks[kind] = hook
}

// Dispatch runs the hook of the event type and reports whether there was one.
func (v *WebhookDispatcher) Dispatch(ctx context.Context, event models.WebhookEvent) bool {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("type", event.Type).
		Str("cid", event.CallCID).
		Str("created_at", event.CreatedAt).
		Msg("Received webhook event.")

	hook, ok := v.hooks[event.Type]
	if ok {
		hook(ctx, event)
	} else {
		logger.Info().Str("type", event.Type).Msg("Unhandled webhook event type.")
	}

	if v.metrics != nil {
		v.metrics.RecordWebhookEvent(event.Type, ok)
	}
	return ok
}
