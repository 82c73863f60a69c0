package garmin

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fitsync/fitsync/client/internal/transport"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

func nonEmptyURL(name, v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("%s cannot be empty", name)
	}
	return strings.TrimRight(v, "/"), nil
}

// WithSSOURL sets the SSO host (default https://sso.garmin.com).
func WithSSOURL(u string) Option {
	return func(c *Client) (err error) {
		c.ssoURL, err = nonEmptyURL("sso url", u)
		return err
	}
}

// WithAPIURL sets the Connect API host.
func WithAPIURL(u string) Option {
	return func(c *Client) (err error) {
		c.apiURL, err = nonEmptyURL("api url", u)
		return err
	}
}

// WithTokenURL sets the OAuth2 token endpoint used for ticket exchange and
// refresh.
func WithTokenURL(u string) Option {
	return func(c *Client) (err error) {
		c.tokenURL, err = nonEmptyURL("token url", u)
		return err
	}
}

// WithClientID overrides the OAuth2 client id.
func WithClientID(id string) Option {
	return func(c *Client) error {
		if id != "" {
			c.clientID = id
		}
		return nil
	}
}

// WithHTTPTimeout bounds each HTTP request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithTransport replaces the base round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		if rt == nil {
			return fmt.Errorf("transport cannot be nil")
		}
		c.base = rt
		return nil
	}
}

// WithDebugLogging dumps every request and response at debug level.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.base = &transport.Debug{Base: c.base}
		}
		return nil
	}
}
