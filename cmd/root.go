package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hemanthvallapani/voice-calendar/internal/config"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI and the health endpoint.
func SetVersion(v string) {
	version = v
}

// newRootCmd builds the command tree around v. Flags that mirror
// configuration keys are bound to v so they take precedence over the
// environment and config files.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "voice-calendar",
		Short: "Calendar backend for voice appointment agents",
		Long: `voice-calendar books, lists, cancels and reschedules appointments on a
Google Calendar on behalf of a voice agent.

It can run as:
  - An HTTP server exposing JSON webhooks and an MCP endpoint (default)
  - An MCP server over stdio for local AI assistants
  - A one-shot CLI that prints the free slots for a day`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "voice-calendar version %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "Directory holding config.yaml and .env (default: working directory)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "json", "Log format: json or text")
	flags.String("calendar-id", "primary", "Google Calendar to book into")
	flags.String("timezone", "Asia/Kolkata", "Default IANA time zone")
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = v.BindPFlag(config.KeyCalendarID, flags.Lookup("calendar-id"))
	_ = v.BindPFlag(config.KeyDefaultTimeZone, flags.Lookup("timezone"))

	load := func() (*config.Config, error) {
		return config.Load(v, configDir)
	}

	rootCmd.AddCommand(newServeCmd(v, load))
	rootCmd.AddCommand(newMCPCmd(load))
	rootCmd.AddCommand(newSlotsCmd(load))
	rootCmd.AddCommand(newAuthCmd(load))
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// configLoader loads and validates configuration once flags are parsed.
type configLoader func() (*config.Config, error)

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd := newRootCmd(config.New())

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
