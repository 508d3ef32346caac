// Package closecrm provides a paced Close REST client and a lead search adapter for the paginator
package closecrm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/logger"
	str "leadsync/internal/platform/strings"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault = "https://api.close.com"
	defaultTimeout = 30 * time.Second
	defaultUA      = "leadsync"
	defaultRPS     = 3
	defaultBurst   = 3
	defaultMaxBody = 8 << 20

	// MaxPageSize is the largest _limit the search endpoint honours
	MaxPageSize = 200
)

// Options configures the Client
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration

	// Outbound pacing; failed requests are never retried
	RPS   float64
	Burst int

	// MaxBody caps how much of a response body is read
	MaxBody int64
}

// Client is a minimal Close REST client with basic auth and request pacing
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	if o.MaxBody <= 0 {
		o.MaxBody = defaultMaxBody
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: rate.NewLimiter(rate.Limit(o.RPS), o.Burst),
		log:     *logger.Named("close"),
		now:     time.Now,
	}
}

// Options returns the effective options
func (c *Client) Options() Options { return c.opts }

// Do issues one paced request with auth headers and returns the body of a 2xx response.
// Non-2xx responses come back as a project error wrapping a *StatusError
func (c *Client) Do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return nil, perr.Unauthorizedf("close api key is empty")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "close request canceled while pacing")
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, rdr)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "close new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// the api key is the username, password stays empty
	req.SetBasicAuth(c.opts.APIKey, "")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "close %s %s failed", method, path)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Str("rate_remaining", resp.Header.Get("RateLimit-Remaining")).
		Msg("close http response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = drainAndClose(resp.Body)
		return nil, statusErr(method, path, resp.StatusCode, string(tail))
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("close body close failed")
		}
	}()
	b, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBody+1))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "close read body failed")
	}
	if int64(len(b)) > c.opts.MaxBody {
		return nil, perr.Queryf("close response exceeds %d bytes", c.opts.MaxBody)
	}
	return b, nil
}

// statusErr maps a non-2xx status onto a project error code
func statusErr(method, path string, status int, body string) error {
	se := &StatusError{
		Status: status,
		Body:   strings.TrimSpace(body),
		Err:    fmt.Errorf("close %s %s: unexpected status %d", method, path, status),
	}
	var code perr.ErrorCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = perr.ErrorCodeUnauthorized
	case status == http.StatusTooManyRequests:
		code = perr.ErrorCodeTooManyRequests
	case status >= 500:
		code = perr.ErrorCodeUnavailable
	default:
		code = perr.ErrorCodeQuery
	}
	msg := fmt.Sprintf("close returned %d", status)
	if se.Body != "" {
		msg += ": " + str.Squash(se.Body, 200)
	}
	return perr.Wrap(se, code, msg)
}
