package scrape

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; Collectabase/1.0)"
	defaultTimeout   = 15 * time.Second
	defaultPageDelay = 400 * time.Millisecond
	defaultMaxPages  = 120

	// Requests are retried at most this many extra times; a deterministic
	// 4xx (other than 429) is returned as-is.
	retryCount = 2
)

// Client talks to the external price source.
type Client struct {
	http      *resty.Client
	baseURL   string
	logger    *slog.Logger
	limiter   *rate.Limiter
	maxPages  int
	retryUnit time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for soft-failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.http.SetHeader("User-Agent", ua)
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// WithPageDelay sets the pause between catalog pages of one platform.
func WithPageDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.limiter = rate.NewLimiter(rate.Every(delay), 1)
		}
	}
}

// WithMaxPages overrides the catalog pagination safety cap.
func WithMaxPages(pages int) Option {
	return func(c *Client) {
		if pages > 0 {
			c.maxPages = pages
		}
	}
}

// WithRetryWaitUnit overrides the linear backoff unit (used in tests).
func WithRetryWaitUnit(unit time.Duration) Option {
	return func(c *Client) {
		if unit > 0 {
			c.retryUnit = unit
			c.configureRetry()
		}
	}
}

// New creates a price source client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		http:      resty.New(),
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:    slog.Default(),
		limiter:   rate.NewLimiter(rate.Every(defaultPageDelay), 1),
		maxPages:  defaultMaxPages,
		retryUnit: time.Second,
	}
	client.http.
		SetTimeout(defaultTimeout).
		SetHeader("User-Agent", defaultUserAgent)
	client.configureRetry()

	for _, opt := range opts {
		opt(client)
	}
	return client
}

// configureRetry applies the retry policy: up to three attempts, retrying
// only transport errors, 429, and 5xx, with linear backoff of one unit per
// attempt. Any other 4xx is deterministically wrong and returned as-is.
func (c *Client) configureRetry() {
	unit := c.retryUnit
	c.http.
		SetRetryCount(retryCount).
		SetRetryMaxWaitTime(time.Duration(retryCount+1) * unit).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			attempt := 1
			if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
				attempt = resp.Request.Attempt
			}
			return time.Duration(attempt) * unit, nil
		})
}
