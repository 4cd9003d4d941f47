package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/hemanthvallapani/voice-calendar/internal/logging"
)

// TokenProvider supplies the credentials used for Google Calendar calls.
// Implementations must return a source that is safe for concurrent use.
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// RefreshRecorder receives the outcome of every access-token refresh.
// *instrumentation.Metrics satisfies it.
type RefreshRecorder interface {
	RecordOAuthTokenRefresh(ctx context.Context, result string)
}

// ErrMissingCredentials is returned when a provider is built without the
// client id, client secret or refresh token it needs.
var ErrMissingCredentials = errors.New("missing Google OAuth credentials")

const (
	refreshResultSuccess = "success"
	refreshResultFailure = "failure"
)

// RefreshTokenProvider mints access tokens from a long-lived refresh token.
// Access tokens are cached until shortly before expiry and refreshed on demand.
type RefreshTokenProvider struct {
	config       *oauth2.Config
	refreshToken string
	recorder     RefreshRecorder
	logger       *slog.Logger
}

// RefreshOption configures a RefreshTokenProvider.
type RefreshOption func(*RefreshTokenProvider)

// WithRefreshRecorder records each refresh attempt on r.
func WithRefreshRecorder(r RefreshRecorder) RefreshOption {
	return func(p *RefreshTokenProvider) {
		p.recorder = r
	}
}

// WithLogger sets the logger used to report refresh failures.
func WithLogger(logger *slog.Logger) RefreshOption {
	return func(p *RefreshTokenProvider) {
		p.logger = logger
	}
}

// NewRefreshTokenProvider returns a provider for config and refreshToken.
func NewRefreshTokenProvider(config *oauth2.Config, refreshToken string, opts ...RefreshOption) (*RefreshTokenProvider, error) {
	switch {
	case config == nil || config.ClientID == "":
		return nil, fmt.Errorf("%w: client id is empty", ErrMissingCredentials)
	case config.ClientSecret == "":
		return nil, fmt.Errorf("%w: client secret is empty", ErrMissingCredentials)
	case refreshToken == "":
		return nil, fmt.Errorf("%w: refresh token is empty", ErrMissingCredentials)
	}

	p := &RefreshTokenProvider{
		config:       config,
		refreshToken: refreshToken,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// TokenSource returns an auto-refreshing token source. The source outlives
// ctx cancellation; ctx values such as oauth2.HTTPClient are kept.
func (p *RefreshTokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	ctx = context.WithoutCancel(ctx)
	return oauth2.ReuseTokenSource(nil, &refresher{
		ctx:          ctx,
		provider:     p,
		refreshToken: p.refreshToken,
	}), nil
}

// refresher exchanges the refresh token on every call. It is wrapped in a
// ReuseTokenSource, which serializes calls and only invokes it on expiry.
type refresher struct {
	ctx          context.Context
	provider     *RefreshTokenProvider
	refreshToken string
}

func (r *refresher) Token() (*oauth2.Token, error) {
	logger := logging.WithOperation(r.provider.logger, "oauth.refresh")

	tok, err := r.provider.config.TokenSource(r.ctx, &oauth2.Token{RefreshToken: r.refreshToken}).Token()
	if err != nil {
		r.record(refreshResultFailure)
		logger.Error("google token refresh failed", logging.Err(err))
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}

	// Google may rotate the refresh token.
	if tok.RefreshToken != "" && tok.RefreshToken != r.refreshToken {
		r.refreshToken = tok.RefreshToken
	}

	r.record(refreshResultSuccess)
	logger.Debug("google token refreshed",
		slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
		slog.Time("expiry", tok.Expiry))
	return tok, nil
}

func (r *refresher) record(result string) {
	if r.provider.recorder != nil {
		r.provider.recorder.RecordOAuthTokenRefresh(r.ctx, result)
	}
}

// StaticTokenProvider serves a fixed token. It never refreshes and is meant
// for tests and short-lived tooling with an access token already in hand.
type StaticTokenProvider struct {
	Token *oauth2.Token
}

// TokenSource returns a source that always yields p.Token.
func (p StaticTokenProvider) TokenSource(context.Context) (oauth2.TokenSource, error) {
	if p.Token == nil || p.Token.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token is empty", ErrMissingCredentials)
	}
	return oauth2.StaticTokenSource(p.Token), nil
}
