package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}
	if c.Scrape.BaseURL == "" {
		problems = append(problems, "scrape.base_url must not be empty")
	}
	if c.Scrape.TimeoutSeconds <= 0 {
		problems = append(problems, "scrape.timeout_seconds must be positive")
	}
	if c.Scrape.PageDelayMS < 0 {
		problems = append(problems, "scrape.page_delay_ms must not be negative")
	}
	if c.Scrape.MaxPages <= 0 {
		problems = append(problems, "scrape.max_pages must be positive")
	}
	if c.Currency.BaseURL == "" {
		problems = append(problems, "currency.base_url must not be empty")
	}
	if (c.Marketplace.ClientID == "") != (c.Marketplace.ClientSecret == "") {
		problems = append(problems, "marketplace credentials must be set together")
	}
	if (c.Metadata.ClientID == "") != (c.Metadata.ClientSecret == "") {
		problems = append(problems, "metadata credentials must be set together")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not text or json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is unknown", c.Logging.Level))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
