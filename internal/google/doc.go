// Package google provides the credentials used to call Google Calendar.
//
// Callers depend on the TokenProvider interface. RefreshTokenProvider is the
// production implementation: it holds a client id, client secret and refresh
// token and hands out an auto-refreshing oauth2.TokenSource. NewOAuthConfig,
// AuthCodeURL and ExchangeCode back the auth command that mints the refresh
// token in the first place.
package google
