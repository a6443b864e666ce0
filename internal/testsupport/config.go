// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"collectabase/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithScrapeBaseURL points the scraper at a test server.
func WithScrapeBaseURL(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scrape.BaseURL = baseURL
	}
}

// WithMarketplaceCredentials sets eBay credentials on the test config.
func WithMarketplaceCredentials(id, secret string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Marketplace.ClientID = id
		cfg.Marketplace.ClientSecret = secret
	}
}
