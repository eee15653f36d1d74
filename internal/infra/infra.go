// Package infra provides the HTTP transport shared by every source: GET with
// timeout, bounded retries, rate limiting and JSON decoding.
package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/phelipetls/seriesbr-sub000/internal/logger"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryWait  = 500 * time.Millisecond
	DefaultUserAgent  = "seriesbr/1.0 (+https://github.com/phelipetls/seriesbr)"
)

// Options configures a Client.
type Options struct {
	Timeout time.Duration

	// MaxRetries counts retries after the first attempt. Negative disables
	// retries.
	MaxRetries int
	RetryWait  time.Duration

	// RateLimit is in requests per second. 0 means unlimited.
	RateLimit  float64
	UserAgent  string
	HTTPClient *http.Client
}

// Client issues GET requests. It is safe for concurrent use and keeps one
// http.Client for connection reuse.
type Client struct {
	http      *http.Client
	retries   uint64
	retryWait time.Duration
	limiter   *rate.Limiter
	userAgent string
}

// NewClient creates a client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = DefaultRetryWait
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		http:      hc,
		retries:   uint64(opts.MaxRetries),
		retryWait: opts.RetryWait,
		userAgent: opts.UserAgent,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c
}

// HTTPError is a non-2xx response. It unwraps to models.ErrTransport.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return models.ErrTransport }

// retryable reports whether the status is worth another attempt.
func (e *HTTPError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Get fetches rawURL and returns the response body. Network failures and
// 5xx/429 responses are retried with exponential backoff; other non-2xx
// responses fail at once with an *HTTPError.
func (c *Client) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	target := QuoteURL(rawURL)
	ctx = logger.With(ctx, zap.String("request_id", uuid.NewString()))

	var (
		body    []byte
		attempt int
	)
	operation := func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		logger.Debugf(ctx, "GET %s -> %d in %s (attempt %d)", target, resp.StatusCode, time.Since(start).Round(time.Millisecond), attempt)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			herr := &HTTPError{
				URL:        target,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(data[:min(len(data), 200)]),
			}
			if herr.retryable() {
				return herr
			}
			return backoff.Permanent(herr)
		}
		body = data
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryWait
	policy.MaxElapsedTime = 0
	notify := func(err error, wait time.Duration) {
		logger.Warnf(ctx, "GET %s failed (%v), retrying in %s", target, err, wait.Round(time.Millisecond))
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.retries), ctx), notify)
	if err != nil {
		var herr *HTTPError
		if errors.As(err, &herr) {
			return nil, herr
		}
		return nil, fmt.Errorf("%w: GET %s: %w", models.ErrTransport, target, err)
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into dst. Numbers decoded
// into interface values are kept as json.Number.
func (c *Client) GetJSON(ctx context.Context, rawURL string, dst any) error {
	body, err := c.Get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	return DecodeJSON(body, dst)
}

// DecodeJSON decodes body into dst, reporting failures as ErrInvalidPayload.
func DecodeJSON(body []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		snippet := strings.TrimSpace(string(body[:min(len(body), 120)]))
		return fmt.Errorf("%w: %v (body starts %q)", models.ErrInvalidPayload, err, snippet)
	}
	return nil
}

// QueryValue percent-encodes the bytes of s that delimit a query string, so
// that user text reads back as a single parameter value. The rest is left to
// QuoteURL.
func QueryValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte("%&#+=;", c) < 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// QuoteURL percent-encodes the bytes of rawURL that may not appear in a
// request line (spaces, quotes, pipes, non-ASCII), leaving reserved
// delimiters and existing escapes alone. Values carrying user text go
// through QueryValue first.
func QuoteURL(rawURL string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(rawURL))
	for i := 0; i < len(rawURL); i++ {
		c := rawURL[i]
		if keepInURL(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func keepInURL(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~:/?#[]@!$&'()*+,;=%", c) >= 0
}
