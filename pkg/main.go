package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pkg "git.solsynth.dev/hypernet/calling/pkg/internal"
	"git.solsynth.dev/hypernet/calling/pkg/internal/config"
	"git.solsynth.dev/hypernet/calling/pkg/internal/database"
	"git.solsynth.dev/hypernet/calling/pkg/internal/grpc"
	"git.solsynth.dev/hypernet/calling/pkg/internal/http"
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/api"
	"git.solsynth.dev/hypernet/calling/pkg/internal/metrics"
	"git.solsynth.dev/hypernet/calling/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Load settings
	cfg, err := config.Load(config.New())
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to the user directory
	rdb, err := database.NewSource(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to redis.")
	}
	defer rdb.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("calling", reg)

	// Connect the platform
	platform := services.NewStreamPlatform(
		services.NewCallService(services.NewRoomService(cfg.Stream), cfg.Calling),
		services.NewUserDirectory(rdb),
		services.NewTokenIssuer(cfg.Stream.ApiKey, cfg.Stream.ApiSecret),
	)
	heartbeat := services.NewHeartbeat(platform, m)
	dispatcher := services.NewWebhookDispatcher(m)

	if len(cfg.Webhook.Secret) == 0 {
		log.Warn().Msg("Webhook secret is not configured, webhook signatures will not be verified!")
	}

	// Server
	server := http.NewServer(api.NewHandler(platform, dispatcher, heartbeat, cfg.Webhook), http.Options{
		PrintRoutes: cfg.Debug.PrintRoutes,
		Metrics:     m,
		Gatherer:    reg,
	})
	go server.Listen(cfg.Bind())

	var gs *grpc.Server
	if len(cfg.GrpcBind) > 0 {
		gs = grpc.NewGrpc(heartbeat)
		go func() {
			if err := gs.Listen(cfg.GrpcBind); err != nil {
				log.Fatal().Err(err).Msg("An error occurred when starting grpc server...")
			}
		}()
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	if _, err := quartz.AddFunc(cfg.Heartbeat, heartbeat.Beat); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Heartbeat).Msg("An error occurred when scheduling heartbeat.")
	}
	quartz.Start()
	go heartbeat.Beat()

	// Messages
	log.Info().Msgf("Calling v%s is started on %s...", pkg.AppVersion, cfg.Bind())
	printEndpoints(cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msgf("Calling v%s is quitting...", pkg.AppVersion)

	quartz.Stop()
	if gs != nil {
		gs.Stop()
	}
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("An error occurred when shutting down server...")
	}
}

func printEndpoints(port int) {
	title := color.New(color.FgCyan, color.Bold)
	route := color.New(color.FgGreen)

	fmt.Println()
	title.Printf("Health check: http://localhost:%d/health\n", port)
	for _, group := range []struct {
		name   string
		routes []string
	}{
		{"Tokens", []string{
			"POST   /api/tokens/user              Generate user token",
			"POST   /api/tokens/call              Generate call token",
		}},
		{"Users", []string{
			"GET    /api/users                    List users",
			"POST   /api/users                    Create user",
			"GET    /api/users/:userId            Get user",
			"PUT    /api/users/:userId            Update user",
			"DELETE /api/users/:userId            Delete user",
		}},
		{"Calls", []string{
			"GET    /api/calls                    List calls",
			"POST   /api/calls                    Create call",
			"GET    /api/calls/:type/:id          Get call",
			"PUT    /api/calls/:type/:id          Update call",
			"POST   /api/calls/:type/:id/end      End call",
		}},
		{"Webhooks", []string{
			"POST   /api/webhooks                 Process events",
		}},
	} {
		title.Printf("  %s\n", group.name)
		for _, item := range group.routes {
			route.Printf("    %s\n", item)
		}
	}
	fmt.Println()
}
