package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-workers/internal/common/config"
	"credit-decision-workers/pkg/registry"
)

type fakeBroker struct{ err error }

func (f fakeBroker) HealthCheck(context.Context) error { return f.err }

type fakeWorkers []string

func (f fakeWorkers) Running() []string { return f }

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name     string
		broker   fakeBroker
		workers  fakeWorkers
		wantCode int
		wantBody string
	}{
		{"ready", fakeBroker{}, fakeWorkers{"analyze-loan-application"}, http.StatusOK, "ready"},
		{"broker down", fakeBroker{err: fmt.Errorf("unavailable")}, fakeWorkers{"analyze-loan-application"}, http.StatusServiceUnavailable, "not ready"},
		{"no workers", fakeBroker{}, fakeWorkers{}, http.StatusServiceUnavailable, "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			readyHandler(tt.broker, tt.workers)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestHealthServer_Routes(t *testing.T) {
	srv := newHealthServer(":0", fakeBroker{}, fakeWorkers{"publish-credit-decision"})

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestWorkerConfig_FallsBackToRegistry(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		"analyze-loan-application": {Enabled: true, MaxJobsActive: 8, Timeout: 45000},
	}}

	analyze := workerConfig(cfg, reg, "analyze-loan-application")
	assert.Equal(t, 45000, analyze.Timeout)
	assert.Equal(t, 8, analyze.MaxJobsActive)

	publish := workerConfig(cfg, reg, "publish-credit-decision")
	assert.True(t, publish.Enabled)
	assert.Equal(t, 10000, publish.Timeout)
	assert.Equal(t, 3, publish.MaxRetries)
}
