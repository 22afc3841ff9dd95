package grpc

import (
	"context"
	"testing"

	"git.solsynth.dev/hypernet/calling/pkg/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	health "google.golang.org/grpc/health/grpc_health_v1"
)

type fixedStatus string

func (v fixedStatus) Status() services.HeartbeatStatus {
	return services.HeartbeatStatus{State: string(v)}
}

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name      string
		heartbeat StatusReporter
		expected  health.HealthCheckResponse_ServingStatus
	}{
		{"no heartbeat", nil, health.HealthCheckResponse_SERVING},
		{"not probed yet", fixedStatus(services.PlatformUnknown), health.HealthCheckResponse_SERVING},
		{"reachable", fixedStatus(services.PlatformReachable), health.HealthCheckResponse_SERVING},
		{"unreachable", fixedStatus(services.PlatformUnreachable), health.HealthCheckResponse_NOT_SERVING},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := NewGrpc(tc.heartbeat).Check(context.Background(), &health.HealthCheckRequest{})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.GetStatus())
		})
	}
}
