package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/hemanthvallapani/voice-calendar/internal/config"
	"github.com/hemanthvallapani/voice-calendar/internal/google"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
)

// exchangeFunc trades an authorization code for a token.
type exchangeFunc func(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error)

func newAuthCmd(load configLoader) *cobra.Command {
	var (
		code        string
		redirectURL string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Mint a Google refresh token for the calendar",
		Long: `Walk through Google's OAuth consent flow and print a refresh token.

Open the printed URL, approve access to the calendar and paste the code
parameter from the URL Google redirects to. Store the printed token as
GOOGLE_REFRESH_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			metrics := instrumentation.NewNoopProvider().Metrics()
			return runAuth(ctx, cfg, redirectURL, code, cmd.InOrStdin(), cmd.OutOrStdout(), google.ExchangeCode, metrics)
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code (prompted for when empty)")
	cmd.Flags().StringVar(&redirectURL, "redirect-url", google.DefaultRedirectURL, "Redirect URL registered on the OAuth client")

	return cmd
}

func runAuth(ctx context.Context, cfg *config.Config, redirectURL, code string, in io.Reader, out io.Writer, exchange exchangeFunc, metrics *instrumentation.Metrics) error {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return fmt.Errorf("missing Google credentials: %s and %s are required", config.KeyGoogleClientID, config.KeyGoogleClientSecret)
	}

	oauthConfig := google.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, redirectURL)

	if code == "" {
		fmt.Fprintf(out, "Visit this URL in your browser and approve access:\n\n  %s\n\n", google.AuthCodeURL(oauthConfig, "voice-calendar"))
		fmt.Fprint(out, "Paste the authorization code: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		code = strings.TrimSpace(line)
		fmt.Fprintln(out)
	}

	tok, err := exchange(ctx, oauthConfig, code)
	if err != nil {
		metrics.RecordOAuthAuth(ctx, instrumentation.StatusError)
		return err
	}
	metrics.RecordOAuthAuth(ctx, instrumentation.StatusSuccess)

	fmt.Fprintf(out, "Refresh token:\n\n  %s\n\nSet it as %s.\n", tok.RefreshToken, config.KeyGoogleRefreshToken)
	return nil
}
