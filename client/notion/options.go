package notion

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fitsync/fitsync/client/internal/transport"
)

// Option configures a Client during construction in New.
//
// Options run before the header transport is installed, so transport options
// such as debug logging end up underneath it.
type Option func(*Client) error

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return fmt.Errorf("base url cannot be empty")
		}
		c.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithVersion overrides the Notion-Version header.
func WithVersion(version string) Option {
	return func(c *Client) error {
		if version != "" {
			c.version = version
		}
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithTransport replaces the base round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		c.http.Transport = rt
		return nil
	}
}

// WithMaxRetries enables exponential backoff retries for recoverable
// failures (429, 5xx, network). Zero keeps the single-attempt behaviour.
func WithMaxRetries(n int, base time.Duration) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("max retries must be >= 0")
		}
		c.maxRetries = n
		if base > 0 {
			c.retryBase = base
		}
		return nil
	}
}

// WithDebugLogging wraps the transport so each request/response is logged.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &transport.Debug{Base: c.http.Transport}
		}
		return nil
	}
}
