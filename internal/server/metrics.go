package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is where Prometheus scrapes by default.
	DefaultMetricsAddr = ":9090"

	// DefaultMetricsWriteTimeout bounds a single scrape.
	DefaultMetricsWriteTimeout = 10 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown of every server.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider must be enabled with the Prometheus exporter.
	InstrumentationProvider *instrumentation.Provider

	Logger *slog.Logger
}

// MetricsServer serves /metrics on a dedicated port, away from the webhook
// traffic, plus a plain-text /healthz for the scraper.
type MetricsServer struct {
	*HTTPServer
}

// NewMetricsServer creates the metrics server. The OpenTelemetry Prometheus
// exporter registers with the default registry that promhttp serves.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required for metrics server")
	}
	if !config.InstrumentationProvider.Enabled() {
		return nil, errors.New("instrumentation provider is not enabled")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{newHTTPServer("metrics", addr, mux, DefaultMetricsWriteTimeout, config.Logger)}, nil
}
