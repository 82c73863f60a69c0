// Package garmin authenticates against Garmin Connect and exposes the few
// profile endpoints the session tooling needs.
//
// Login walks the SSO sign-in form to obtain a service ticket, then exchanges
// the ticket for an OAuth2 token. The token is the whole of the client's
// state: Tokens and Resume move it in and out of a Client so it can be cached
// between runs.
package garmin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/fitsync/fitsync/client/internal/transport"
)

const (
	DefaultSSOURL   = "https://sso.garmin.com"
	DefaultAPIURL   = "https://connectapi.garmin.com"
	DefaultTokenURL = "https://diauth.garmin.com/di-oauth2-service/oauth/token"
	DefaultClientID = "GARMIN_CONNECT_MOBILE_ANDROID_DI"

	userAgent = "GCM-iOS-5.7.2.1"
)

// ErrNotAuthenticated is returned by API calls made before Login or Resume.
var ErrNotAuthenticated = errors.New("garmin: client has no tokens")

// Tokens is the serialisable authentication state of a Client.
type Tokens struct {
	OAuth2 *oauth2.Token `json:"oauth2"`
}

// Valid reports whether the tokens carry an access token at all. Expiry is
// not checked here; an expired token with a refresh token is still usable.
func (t Tokens) Valid() bool {
	return t.OAuth2 != nil && t.OAuth2.AccessToken != ""
}

// Client is an explicitly constructed Garmin Connect client. It is not safe
// for concurrent Login calls.
type Client struct {
	ssoURL   string
	apiURL   string
	tokenURL string
	clientID string
	timeout  time.Duration
	base     http.RoundTripper

	sso    *resty.Client
	api    *resty.Client
	tokens Tokens
}

// New constructs an unauthenticated Client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		ssoURL:   DefaultSSOURL,
		apiURL:   DefaultAPIURL,
		tokenURL: DefaultTokenURL,
		clientID: DefaultClientID,
		timeout:  30 * time.Second,
		base:     http.DefaultTransport,
	}

	if transport.DebugRequested() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.sso = resty.New().
		SetTransport(c.base).
		SetTimeout(c.timeout).
		SetBaseURL(c.ssoURL).
		SetHeader("User-Agent", userAgent)
	return c, nil
}

// Tokens returns the tokens obtained by the last Login or Resume.
func (c *Client) Tokens() Tokens {
	return c.tokens
}

// Resume restores previously exported tokens without contacting Garmin.
func (c *Client) Resume(tokens Tokens) error {
	if !tokens.Valid() {
		return ErrNotAuthenticated
	}
	c.bind(tokens.OAuth2)
	return nil
}

// bind installs tok as the credential for API calls. Expired tokens are
// refreshed transparently; refreshed tokens are not written back to Tokens.
func (c *Client) bind(tok *oauth2.Token) {
	c.tokens = Tokens{OAuth2: tok}

	refreshCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Transport: c.base,
		Timeout:   c.timeout,
	})
	cfg := &oauth2.Config{
		ClientID: c.clientID,
		Endpoint: oauth2.Endpoint{TokenURL: c.tokenURL, AuthStyle: oauth2.AuthStyleInParams},
	}

	httpClient := &http.Client{
		Timeout:   c.timeout,
		Transport: &oauth2.Transport{Source: cfg.TokenSource(refreshCtx, tok), Base: c.base},
	}
	c.api = resty.NewWithClient(httpClient).
		SetBaseURL(c.apiURL).
		SetHeader("User-Agent", userAgent)
}
