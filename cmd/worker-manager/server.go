// cmd/worker-manager/server.go
package main

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type workerLister interface {
	Running() []string
}

func newHealthServer(addr string, broker healthChecker, workers workerLister) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", readyHandler(broker, workers))
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// readyHandler reports ready once the broker answers and at least one worker
// is polling.
func readyHandler(broker healthChecker, workers workerLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		running := workers.Running()
		if err := broker.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		if len(running) == 0 {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"error":  "no workers running",
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status":  "ready",
			"workers": running,
			"time":    time.Now().Format(time.RFC3339),
		})
	}
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
