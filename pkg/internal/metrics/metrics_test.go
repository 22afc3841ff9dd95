package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "/api/users", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/users", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/users", 500, 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/users", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/users", "500")))
}

func TestRecordWebhookEvent(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordWebhookEvent("call.created", true)
	m.RecordWebhookEvent("call.unknown", false)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues("call.created", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues("call.unknown", "false")))
}

func TestSetPlatformHealth(t *testing.T) {
	m := New("", prometheus.NewRegistry())

	m.SetPlatformHealth(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlatformHealth))

	m.SetPlatformHealth(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.PlatformHealth))
}
