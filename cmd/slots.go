package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
)

func newSlotsCmd(load configLoader) *cobra.Command {
	var timeZone string

	cmd := &cobra.Command{
		Use:   "slots [date]",
		Short: "Print the free slots for a day",
		Long: `Print the free appointment slots for a day, exactly as the
check-availability webhook computes them.

The date is YYYY-MM-DD, "today" or "tomorrow" and defaults to today.`,
		Example: `  voice-calendar slots tomorrow
  voice-calendar slots 2025-03-14 --zone Europe/Berlin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := "today"
			if len(args) == 1 {
				date = args[0]
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = instrumentation.WithSource(ctx, instrumentation.SourceCLI)

			provider := instrumentation.NewNoopProvider()
			client, err := newCalendarClient(ctx, cfg, provider.Metrics(), logger)
			if err != nil {
				return fmt.Errorf("failed to create calendar client: %w", err)
			}
			apptConfig, err := cfg.Appointments()
			if err != nil {
				return err
			}
			svc, err := appointments.NewService(client, apptConfig, appointments.WithLogger(logger))
			if err != nil {
				return err
			}

			return runSlots(ctx, cmd.OutOrStdout(), svc, date, timeZone)
		},
	}

	cmd.Flags().StringVar(&timeZone, "zone", "", "IANA time zone for this query (default: the configured default)")

	return cmd
}

func runSlots(ctx context.Context, w io.Writer, svc *appointments.Service, date, timeZone string) error {
	result, err := svc.CheckAvailability(ctx, appointments.AvailabilityRequest{
		Date:     date,
		TimeZone: timeZone,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s, %s (%s)\n", result.Date.Format("Monday"), result.Date.Format(appointments.DateLayout), result.TimeZone)
	fmt.Fprintf(w, "Working hours: %s to %s\n\n",
		result.Window.Start.Format("15:04"), result.Window.End.Format("15:04"))

	if len(result.Slots) == 0 {
		fmt.Fprintln(w, result.Message())
		return nil
	}

	for i, slot := range result.Slots {
		fmt.Fprintf(w, "%2d. %s\n", i+1, appointments.FormatDisplay(slot.Start, slot.End))
	}
	fmt.Fprintf(w, "\n%s\n", result.Message())
	return nil
}
