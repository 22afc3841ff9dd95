package http

import (
	"strings"
	"time"

	pkg "git.solsynth.dev/hypernet/calling/pkg/internal"
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/api"
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/calling/pkg/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type App struct {
	app *fiber.App
}

type Options struct {
	PrintRoutes bool
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
}

func NewServer(handler *api.Handler, opts Options) *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          pkg.AppName,
		AppName:               pkg.AppName,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
		EnablePrintRoutes:     opts.PrintRoutes,
		ErrorHandler:          exts.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodHead,
			fiber.MethodOptions,
			fiber.MethodPut,
			fiber.MethodDelete,
			fiber.MethodPatch,
		}, ","),
	}))

	app.Use(logger.New(logger.Config{
		Format: "${status} | ${latency} | ${method} ${path}\n",
		Output: log.Logger,
	}))

	if opts.Metrics != nil {
		app.Use(metricsMiddleware(opts.Metrics))
	}
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	handler.MapAPIs(app, "/api")

	app.Use(func(c *fiber.Ctx) error {
		return exts.RouteNotFound(c.OriginalURL())
	})

	return &App{app}
}

// metricsMiddleware resolves failures itself so the recorded status is the
// one the client gets.
func metricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		if err := c.Next(); err != nil {
			if err := c.App().ErrorHandler(c, err); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		path := c.Route().Path
		if c.Route().Method == "USE" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Method(), path, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}

func (v *App) Listen(bind string) {
	if err := v.app.Listen(bind); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}

func (v *App) Shutdown() error {
	return v.app.Shutdown()
}

// Fiber exposes the underlying app, mostly for tests.
func (v *App) Fiber() *fiber.App {
	return v.app
}
