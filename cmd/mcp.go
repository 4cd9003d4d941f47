package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/hemanthvallapani/voice-calendar/internal/config"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
	"github.com/hemanthvallapani/voice-calendar/internal/logging"
)

func newMCPCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the appointment tools over stdio",
		Long: `Serve the appointment tools to a local MCP client over stdin and stdout.

Logs go to stderr so they never corrupt the protocol stream. Telemetry is
not exported in this mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runMCPStdio(cmd.Context(), cfg)
		},
	}
}

func runMCPStdio(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	provider := instrumentation.NewNoopProvider()
	client, err := newCalendarClient(ctx, cfg, provider.Metrics(), logger)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	audit := instrumentation.DefaultConfig().AuditLogging
	sc, err := newServerContext(ctx, cfg, client, provider, audit, logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	stdio := mcpserver.NewStdioServer(mcpSrv)
	stdio.SetErrorLogger(logging.StdLogger(logger, slog.LevelError))

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
