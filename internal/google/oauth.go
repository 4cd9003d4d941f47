package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// DefaultRedirectURL is the loopback redirect used by the auth command. The
// browser lands on an unreachable page whose URL carries the code to paste.
const DefaultRedirectURL = "http://localhost"

// NewOAuthConfig returns the OAuth2 configuration for the calendar scopes.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if redirectURL == "" {
		redirectURL = DefaultRedirectURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       append([]string(nil), DefaultOAuthScopes...),
	}
}

// AuthCodeURL returns the consent URL. Offline access and a forced consent
// prompt make Google issue a refresh token even for a returning user.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ErrNoRefreshToken is returned when the exchange succeeded but Google did
// not include a refresh token.
var ErrNoRefreshToken = errors.New("token response did not contain a refresh token")

// ExchangeCode trades an authorization code for a token that carries a
// refresh token.
func ExchangeCode(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return tok, nil
}
