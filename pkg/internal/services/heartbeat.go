package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"git.solsynth.dev/hypernet/calling/pkg/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	PlatformUnknown     = "unknown"
	PlatformReachable   = "reachable"
	PlatformUnreachable = "unreachable"
)

const heartbeatTimeout = 10 * time.Second

type HeartbeatStatus struct {
	State     string     `json:"state"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

// Heartbeat probes the platform on a schedule and remembers the outcome.
type Heartbeat struct {
	platform Platform
	metrics  *metrics.Metrics

	status atomic.Pointer[HeartbeatStatus]

	mu        sync.Mutex
	listeners []func(healthy bool)
}

func NewHeartbeat(platform Platform, m *metrics.Metrics) *Heartbeat {
	v := &Heartbeat{platform: platform, metrics: m}
	v.status.Store(&HeartbeatStatus{State: PlatformUnknown})
	return v
}

// Subscribe registers fn to be called after every probe.
func (v *Heartbeat) Subscribe(fn func(healthy bool)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

func (v *Heartbeat) Beat() {
	ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
	defer cancel()

	err := v.platform.Ping(ctx)
	now := time.Now()
	healthy := err == nil
	if healthy {
		v.status.Store(&HeartbeatStatus{State: PlatformReachable, CheckedAt: &now})
		log.Debug().Msg("Platform heartbeat succeeded.")
	} else {
		v.status.Store(&HeartbeatStatus{State: PlatformUnreachable, CheckedAt: &now})
		log.Warn().Err(err).Msg("Platform heartbeat failed.")
	}

	if v.metrics != nil {
		v.metrics.SetPlatformHealth(healthy)
	}

	v.mu.Lock()
	listeners := append([]func(bool){}, v.listeners...)
	v.mu.Unlock()
	for _, fn := range listeners {
		fn(healthy)
	}
}

func (v *Heartbeat) Status() HeartbeatStatus {
	return *v.status.Load()
}
