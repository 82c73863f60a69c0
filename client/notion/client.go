// Package notion is a small client for the parts of the Notion REST API used
// by the duplicate cleanup: database queries and page archival.
package notion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"

	apierrors "github.com/fitsync/fitsync/client/internal/errors"
	"github.com/fitsync/fitsync/client/internal/transport"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"
)

// Client talks to the Notion API on behalf of a single integration token.
type Client struct {
	baseURL    string
	version    string
	token      string
	http       *http.Client
	maxRetries int
	retryBase  time.Duration
}

// New constructs a Client for the given integration token.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("notion: token cannot be empty")
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		version:   DefaultVersion,
		token:     token,
		http:      &http.Client{Timeout: 30 * time.Second},
		retryBase: 500 * time.Millisecond,
	}

	if transport.DebugRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.http.Transport = &transport.Headers{
		Base: c.http.Transport,
		Values: map[string]string{
			"Authorization":  "Bearer " + c.token,
			"Notion-Version": c.version,
		},
	}
	return c, nil
}

// do sends a JSON request and decodes a JSON response into out. Non-2xx
// responses become classified errors.
func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) error {
	return c.withRetry(ctx, operation, func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		var body io.Reader
		if in != nil {
			raw, err := json.Marshal(in)
			if err != nil {
				return backoff.Permanent(err)
			}
			body = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			requestsTotal.WithLabelValues(operation, "error").Inc()
			return apierrors.NewNetworkError(operation, err)
		}
		defer func() { _ = resp.Body.Close() }()
		requestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
			return apierrors.NewHTTPError(resp.StatusCode, errorMessage(raw), operation)
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("%s: decode response: %w", operation, err))
		}
		return nil
	})
}

// withRetry runs op once, or up to maxRetries more times for recoverable
// errors when retries are configured.
func (c *Client) withRetry(ctx context.Context, operation string, op func() error) error {
	if c.maxRetries <= 0 {
		return unwrapPermanent(op())
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryBase
	exp.Multiplier = 2
	exp.MaxInterval = 20 * time.Second
	exp.Reset()
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if apierrors.IsRecoverable(err) {
			recoverableFailuresTotal.WithLabelValues(operation).Inc()
			return err
		}
		if _, ok := err.(*backoff.PermanentError); ok {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}

func unwrapPermanent(err error) error {
	if p, ok := err.(*backoff.PermanentError); ok {
		return p.Err
	}
	return err
}

// errorMessage pulls the "message" field out of a Notion error object, or
// returns the raw body when it is not one.
func errorMessage(raw []byte) string {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Code + ": " + apiErr.Message
	}
	return string(raw)
}
