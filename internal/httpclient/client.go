// Package httpclient centralizes construction of the HTTP clients used to
// reach hosted services (the LLM classifier, the record store).
package httpclient

import (
	"net/http"
	"time"

	"github.com/hemchdev/aura/internal/logging"
)

type loggingRoundTripper struct {
	base   http.RoundTripper
	logger logging.Logger
}

// New builds an HTTP client with the given timeout whose transport logs each
// request's method, URL, status, and duration at debug level.
func New(timeout time.Duration, logger logging.Logger) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &loggingRoundTripper{
			base:   http.DefaultTransport,
			logger: logging.OrNop(logger),
		},
	}
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.logger.Debug("HTTP %s %s failed after %s: %v", req.Method, req.URL, elapsed, err)
		return nil, err
	}
	t.logger.Debug("HTTP %s %s -> %d (%s)", req.Method, req.URL, resp.StatusCode, elapsed)
	return resp, nil
}
