package api

import (
	"fmt"
	"time"

	pkg "git.solsynth.dev/hypernet/calling/pkg/internal"
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/calling/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (v *Handler) getHealth(c *fiber.Ctx) error {
	status := services.HeartbeatStatus{State: services.PlatformUnknown}
	if v.heartbeat != nil {
		status = v.heartbeat.Status()
	}

	return exts.OK(c, fiber.Map{
		"status":    "ok",
		"message":   fmt.Sprintf("%s is running", pkg.AppName),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   pkg.AppVersion,
		"platform":  status,
	})
}
