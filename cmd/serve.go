package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hemanthvallapani/voice-calendar/internal/config"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
	"github.com/hemanthvallapani/voice-calendar/internal/webhook"
)

func newServeCmd(v *viper.Viper, load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook API and MCP endpoint",
		Long: `Start the HTTP server used by the voice platform.

It serves:
  - POST /webhook/* JSON webhooks for availability and bookings
  - /mcp the same operations as MCP tools over streamable HTTP
  - /health, /healthz, /readyz health endpoints
  - /metrics Prometheus metrics on a separate port (--metrics-addr)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 5000, "Port for the webhook server")
	flags.Int("rate-limit", 120, "Requests per minute allowed per client IP (0 disables)")
	flags.Bool("metrics-enabled", true, "Serve Prometheus metrics")
	flags.String("metrics-addr", server.DefaultMetricsAddr, "Address for the metrics server")
	flags.String("gin-mode", "release", "Gin mode: release, debug or test")
	_ = v.BindPFlag(config.KeyPort, flags.Lookup("port"))
	_ = v.BindPFlag(config.KeyRateLimitPerMinute, flags.Lookup("rate-limit"))
	_ = v.BindPFlag(config.KeyMetricsEnabled, flags.Lookup("metrics-enabled"))
	_ = v.BindPFlag(config.KeyMetricsAddr, flags.Lookup("metrics-addr"))
	_ = v.BindPFlag(config.KeyGinMode, flags.Lookup("gin-mode"))

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			logger.Error("instrumentation shutdown failed", slog.String("error", err.Error()))
		}
	}()

	client, err := newCalendarClient(shutdownCtx, cfg, provider.Metrics(), logger)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	sc, err := newServerContext(shutdownCtx, cfg, client, provider, instrConfig.AuditLogging, logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", slog.String("error", err.Error()))
		}
	}()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	health := server.NewHealthChecker(sc, version)
	router := server.NewRouter(sc, health, server.RouterConfig{
		Mode:               cfg.GinMode,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Version:            version,
	})
	webhook.NewHandler(sc).RegisterRoutes(router)
	server.RegisterMCPEndpoint(router, mcpSrv, server.MCPConfig{AuthToken: cfg.MCPAuthToken})

	httpServer := server.NewHTTPServer(cfg.ListenAddr(), router, logger)

	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() && instrConfig.MetricsExporter == instrumentation.ExporterPrometheus {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	}

	serverDone := make(chan error, 2)
	go func() {
		serverDone <- httpServer.Start()
	}()
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(); err != nil {
				serverDone <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	logger.Info("voice-calendar started",
		slog.String("addr", httpServer.Addr()),
		slog.String("version", version),
		slog.String("calendar_id", client.CalendarID()),
		slog.Bool("metrics", metricsServer != nil),
		slog.Bool("mcp_auth", cfg.MCPAuthToken != ""))

	var serveErr error
	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-serverDone:
		if serveErr != nil {
			logger.Error("server stopped", slog.String("error", serveErr.Error()))
		}
	}

	// /readyz reports 503 from here on.
	health.SetReady(false)

	stopCtx, stop := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer stop()

	var errs []error
	if serveErr != nil {
		errs = append(errs, serveErr)
	}
	if err := httpServer.Shutdown(stopCtx); err != nil {
		errs = append(errs, fmt.Errorf("error shutting down HTTP server: %w", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down metrics server: %w", err))
		}
	}

	logger.Info("voice-calendar stopped")
	return errors.Join(errs...)
}
