// Package currency supplies the USD to EUR conversion rate used when storing
// scraped prices. Rates come from the frankfurter.app reference feed with a
// fixed fallback so price resolution keeps working offline.
package currency

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.frankfurter.app"

	// FallbackRate is used when the live feed is unreachable.
	FallbackRate = 0.92

	httpTimeout = 10 * time.Second
	cacheTTL    = time.Hour
)

// Provider fetches and caches the USD to EUR rate.
type Provider struct {
	http    *resty.Client
	baseURL string
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	rate      float64
	live      bool
	fetchedAt time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBaseURL overrides the rate feed base URL.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithClock overrides the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a rate provider.
func New(opts ...Option) *Provider {
	provider := &Provider{
		http:    resty.New().SetTimeout(httpTimeout),
		baseURL: defaultBaseURL,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider
}

// ReferenceRate returns the USD to EUR rate and whether it came from the live
// feed. It never fails: feed errors fall back to FallbackRate. Live rates are
// cached for an hour.
func (p *Provider) ReferenceRate(ctx context.Context) (float64, bool) {
	p.mu.Lock()
	if p.live && p.now().Sub(p.fetchedAt) < cacheTTL {
		rate := p.rate
		p.mu.Unlock()
		return rate, true
	}
	p.mu.Unlock()

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"from": "USD", "to": "EUR"}).
		SetResult(&payload).
		Get(p.baseURL + "/latest")
	if err != nil || !resp.IsSuccess() || payload.Rates["EUR"] <= 0 {
		if err != nil {
			p.logger.Warn("rate feed unreachable, using fallback",
				slog.Float64("rate", FallbackRate), slog.Any("error", err))
		} else {
			p.logger.Warn("rate feed returned unusable payload, using fallback",
				slog.Float64("rate", FallbackRate), slog.Int("status", resp.StatusCode()))
		}
		return FallbackRate, false
	}

	rate := payload.Rates["EUR"]
	p.mu.Lock()
	p.rate = rate
	p.live = true
	p.fetchedAt = p.now()
	p.mu.Unlock()

	p.logger.Debug("fetched conversion rate", slog.Float64("usd_to_eur", rate))
	return rate, true
}
