package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryServer_ExposesGatewayMetrics(t *testing.T) {
	telemetry := NewTelemetryServer("127.0.0.1:0", nil)
	metrics := NewMetrics(telemetry.GetRegistry())

	metrics.HttpRequestSeconds.WithLabelValues("trains-data", "200").Observe(0.01)
	metrics.HttpErrorsTotal.WithLabelValues("seed-data", "status").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	telemetry.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "trainbot_gateway_request_seconds")
	assert.Contains(t, body, `trainbot_gateway_errors_total{endpoint="seed-data",kind="status"} 1`)
	assert.Contains(t, body, `trainbot_build_info{git_commit="unknown",version="dev"} 1`)
}

func TestTelemetryServer_StopWithoutStart(t *testing.T) {
	telemetry := NewTelemetryServer("127.0.0.1:0", nil)
	assert.NoError(t, telemetry.Stop())
}
