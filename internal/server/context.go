package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
)

// ServerContext holds the dependencies shared by the webhook handlers and
// the MCP tools.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	service     *appointments.Service
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger
	mu          sync.RWMutex
	shutdown    bool
}

// ContextOption configures a ServerContext.
type ContextOption func(*ServerContext)

// WithMetrics sets the metrics recorder. A nil value disables metrics.
func WithMetrics(m *instrumentation.Metrics) ContextOption {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger sets the audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) ContextOption {
	return func(sc *ServerContext) {
		sc.auditLogger = al
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewServerContext creates a new server context around service.
func NewServerContext(ctx context.Context, service *appointments.Service, opts ...ContextOption) (*ServerContext, error) {
	if service == nil {
		return nil, fmt.Errorf("appointments service cannot be nil")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		service: service,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Service returns the appointments service.
func (sc *ServerContext) Service() *appointments.Service {
	return sc.service
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
