package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves /metrics on its own port, separate from the API.
type MetricsServer struct {
	srv *http.Server
	log *slog.Logger
}

// NewMetricsServer creates the metrics endpoint server.
func NewMetricsServer(addr string, logger *slog.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: logger.With(slog.String("component", "metrics")),
	}
}

// Start begins serving. Blocks until Shutdown.
func (m *MetricsServer) Start() error {
	m.log.Info("metrics server listening", slog.String("addr", m.srv.Addr))
	return m.srv.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
