package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewOAuthConfig(t *testing.T) {
	conf := NewOAuthConfig("id", "secret", "")

	assert.Equal(t, "id", conf.ClientID)
	assert.Equal(t, DefaultRedirectURL, conf.RedirectURL)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar"}, conf.Scopes)
	assert.Equal(t, "https://oauth2.googleapis.com/token", conf.Endpoint.TokenURL)

	// Scopes must be a copy so callers cannot mutate the package default.
	conf.Scopes[0] = "mutated"
	assert.Equal(t, "https://www.googleapis.com/auth/calendar", DefaultOAuthScopes[0])
}

func TestAuthCodeURL(t *testing.T) {
	conf := NewOAuthConfig("id", "secret", "http://localhost:8085")

	u, err := url.Parse(AuthCodeURL(conf, "xyz"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "http://localhost:8085", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "auth/calendar")
}

func tokenServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeCode(t *testing.T) {
	tests := map[string]struct {
		body    string
		code    string
		wantErr error
	}{
		"refresh token issued": {
			body: `{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt"}`,
			code: "4/abc",
		},
		"no refresh token": {
			body:    `{"access_token":"at","token_type":"Bearer","expires_in":3600}`,
			code:    "4/abc",
			wantErr: ErrNoRefreshToken,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := tokenServer(t, tt.body)
			conf := NewOAuthConfig("id", "secret", "")
			conf.Endpoint = oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams}

			tok, err := ExchangeCode(context.Background(), conf, tt.code)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "rt", tok.RefreshToken)
		})
	}
}

func TestExchangeCode_EmptyCode(t *testing.T) {
	_, err := ExchangeCode(context.Background(), NewOAuthConfig("id", "secret", ""), "")
	assert.Error(t, err)
}
