package grpc

import (
	"context"
	"net"

	"git.solsynth.dev/hypernet/calling/pkg/internal/services"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// StatusReporter is the source of the serving status, usually the heartbeat.
type StatusReporter interface {
	Status() services.HeartbeatStatus
}

type Server struct {
	health.UnimplementedHealthServer

	srv       *grpc.Server
	heartbeat StatusReporter
}

func NewGrpc(heartbeat StatusReporter) *Server {
	server := &Server{
		srv:       grpc.NewServer(),
		heartbeat: heartbeat,
	}

	health.RegisterHealthServer(server.srv, server)

	reflection.Register(server.srv)

	return server
}

// Check serves until a heartbeat has seen the platform unreachable.
func (v *Server) Check(ctx context.Context, in *health.HealthCheckRequest) (*health.HealthCheckResponse, error) {
	status := health.HealthCheckResponse_SERVING
	if v.heartbeat != nil && v.heartbeat.Status().State == services.PlatformUnreachable {
		status = health.HealthCheckResponse_NOT_SERVING
	}
	return &health.HealthCheckResponse{Status: status}, nil
}

func (v *Server) Listen(bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	return v.srv.Serve(listener)
}

func (v *Server) Stop() {
	v.srv.GracefulStop()
}
