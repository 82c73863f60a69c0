// Package transport holds http.RoundTripper wrappers shared by the API clients.
package transport

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog/log"
)

// Headers wraps an http.RoundTripper and sets a fixed header set on every
// request. The Notion client uses it for Authorization and Notion-Version.
type Headers struct {
	Base   http.RoundTripper
	Values map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *Headers) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	cloned := req.Clone(req.Context())
	for k, v := range t.Values {
		cloned.Header.Set(k, v)
	}
	return t.base().RoundTrip(cloned)
}

func (t *Headers) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

// Debug dumps each request and response at debug level.
//
// It logs full bodies, including tokens and personal data. Enable it with
// FITSYNC_DEBUG=true or DEBUG=true while troubleshooting only.
type Debug struct {
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (dt *Debug) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// DebugRequested reports whether HTTP dumps were requested through the
// environment.
func DebugRequested() bool {
	return os.Getenv("FITSYNC_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
