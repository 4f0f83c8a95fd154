// Package webclient is the single outbound HTTP path for gateways and the
// explorer API. Every request gets a bounded per-attempt timeout, honours
// caller cancellation, and transient failures (connection errors, 5xx) are
// retried with exponential backoff. Client errors (4xx) are never retried.
package webclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type Client struct {
	hc       *http.Client
	timeout  time.Duration
	attempts uint64
	logger   *zap.Logger
}

func New(timeout time.Duration, attempts uint64, logger *zap.Logger) *Client {
	return &Client{
		hc:       &http.Client{},
		timeout:  timeout,
		attempts: attempts,
		logger:   logger,
	}
}

type transientError struct {
	err error
}

func (t transientError) Error() string { return t.err.Error() }
func (t transientError) Unwrap() error { return t.err }

// sanitizeURL masks credential-bearing query values so request URLs can be
// logged and embedded in errors without leaking API keys.
func sanitizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	masked := false
	for key := range query {
		if strings.EqualFold(key, "apikey") {
			query.Set(key, "REDACTED")
			masked = true
		}
	}
	if masked {
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

// sanitizeError rewrites the URL inside transport errors, which otherwise
// carry the full query string of the failed request.
func sanitizeError(err error) error {
	if ue, ok := err.(*url.Error); ok {
		ue.URL = sanitizeURL(ue.URL)
	}
	return err
}

// GetBytes fetches url and returns the response body together with the HTTP
// status code. The returned error is non-nil only when no usable response
// could be obtained within the retry budget; a non-2xx status with a body is
// a valid result that the caller classifies.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, int, error) {
	var body []byte
	var status int

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return transientError{sanitizeError(err)}
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return transientError{err}
		}
		status = resp.StatusCode
		if status >= http.StatusInternalServerError {
			return transientError{fmt.Errorf("server returned %s", resp.Status)}
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying request",
			zap.String("url", sanitizeURL(url)),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.attempts),
		ctx,
	)
	if err := backoff.RetryNotify(attempt, policy, notify); err != nil {
		// A final 5xx still produced a response; hand it to the caller
		// rather than discarding the body.
		if _, ok := err.(transientError); ok && status >= http.StatusInternalServerError {
			return body, status, nil
		}
		return nil, 0, fmt.Errorf("requesting %s: %w", sanitizeURL(url), err)
	}
	return body, status, nil
}

// GetJSON fetches url and decodes a 2xx response body into out. The decode
// target error is left untagged; callers decide whether bad JSON is
// malformed upstream data or an upstream fault.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) (int, error) {
	body, status, err := c.GetBytes(ctx, url)
	if err != nil {
		return 0, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return status, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return status, fmt.Errorf("decoding response from %s: %w", sanitizeURL(url), err)
	}
	return status, nil
}
