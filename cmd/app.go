package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
	"github.com/hemanthvallapani/voice-calendar/internal/config"
	"github.com/hemanthvallapani/voice-calendar/internal/google"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
	"github.com/hemanthvallapani/voice-calendar/internal/logging"
	"github.com/hemanthvallapani/voice-calendar/internal/resources"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
	"github.com/hemanthvallapani/voice-calendar/internal/tools/calendar_tools"
)

// newLogger builds the process logger from cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, w)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// newCalendarClient connects to Google Calendar with the refresh token in cfg.
func newCalendarClient(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) (*calendar.Client, error) {
	if err := cfg.RequireGoogle(); err != nil {
		return nil, err
	}

	oauthConfig := google.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, "")
	tokenProvider, err := google.NewRefreshTokenProvider(oauthConfig, cfg.GoogleRefreshToken,
		google.WithRefreshRecorder(metrics),
		google.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return calendar.NewClient(ctx, tokenProvider,
		calendar.WithCalendarID(cfg.CalendarID),
		calendar.WithMetrics(metrics),
		calendar.WithLogger(logger),
	)
}

// newServerContext wires the appointments service and its instrumentation
// around cal.
func newServerContext(ctx context.Context, cfg *config.Config, cal appointments.CalendarAPI, provider *instrumentation.Provider, audit instrumentation.AuditLoggingConfig, logger *slog.Logger) (*server.ServerContext, error) {
	apptConfig, err := cfg.Appointments()
	if err != nil {
		return nil, err
	}

	auditLogger := instrumentation.NewAuditLogger(logger, audit)
	svc, err := appointments.NewService(cal, apptConfig,
		appointments.WithMetrics(provider.Metrics()),
		appointments.WithAuditLogger(auditLogger),
		appointments.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return server.NewServerContext(ctx, svc,
		server.WithMetrics(provider.Metrics()),
		server.WithAuditLogger(auditLogger),
		server.WithLogger(logger),
	)
}

// newMCPServer creates the MCP server with every appointment tool registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("voice-calendar", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery(),
	)

	if err := calendar_tools.RegisterCalendarTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register calendar tools: %w", err)
	}
	if err := resources.RegisterSettingsResources(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register resources: %w", err)
	}
	return mcpSrv, nil
}
