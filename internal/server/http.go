package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Timeouts for the webhook server.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 60 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
)

// RouterConfig configures the gin engine shared by the webhooks and /mcp.
type RouterConfig struct {
	// Mode is the gin mode: "release", "debug" or "test".
	Mode string

	RateLimitPerMinute int
	CORSAllowedOrigins []string

	// Version is reported by /healthz/detailed.
	Version string
}

// NewRouter returns a gin engine with the standard middleware chain and the
// health and index endpoints registered. Callers add the webhook and MCP
// routes.
func NewRouter(sc *ServerContext, health *HealthChecker, config RouterConfig) *gin.Engine {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	r := gin.New()
	r.Use(
		Recovery(sc.Logger()),
		RequestID(),
		AccessLog(sc.Logger(), sc.Metrics()),
		cors.New(corsConfig(config.CORSAllowedOrigins)),
		RateLimit(config.RateLimitPerMinute, sc.Logger()),
	)

	health.RegisterHealthEndpoints(r)
	r.GET("/", IndexHandler)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", RequestIDHeader, "Mcp-Session-Id"},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader, "Mcp-Session-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Voice Calendar API</title></head>
<body>
<h1>Voice Calendar API - LIVE</h1>
<p>Backend for voice agent appointment booking</p>
<h3>Endpoints:</h3>
<ul>
  <li>POST /webhook/check-availability</li>
  <li>POST /webhook/create-event</li>
  <li>POST /webhook/list-events</li>
  <li>POST /webhook/cancel-event</li>
  <li>POST /webhook/reschedule-event</li>
  <li>POST /mcp</li>
  <li>GET /health</li>
</ul>
<p><strong>Status:</strong> Ready</p>
</body>
</html>
`

// IndexHandler serves a short HTML page listing the endpoints.
func IndexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

// HTTPServer is a named http.Server with graceful shutdown. It runs both
// the webhook router and the metrics endpoint.
type HTTPServer struct {
	name       string
	httpServer *http.Server
	logger     *slog.Logger
}

// NewHTTPServer wraps the webhook handler in an http.Server bound to addr.
func NewHTTPServer(addr string, handler http.Handler, logger *slog.Logger) *HTTPServer {
	return newHTTPServer("webhook", addr, handler, DefaultWriteTimeout, logger)
}

func newHTTPServer(name, addr string, handler http.Handler, writeTimeout time.Duration, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		name:   name,
		logger: logger.With(slog.String("server", name)),
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       DefaultIdleTimeout,
		},
	}
}

// Start listens on the configured address and serves until Shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln. A clean shutdown returns nil.
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.logger.Info("starting "+s.name+" server", slog.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down " + s.name + " server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the served handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.httpServer.Addr
}
