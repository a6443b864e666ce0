package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"collectabase/internal/catalog"
	"collectabase/internal/config"
	"collectabase/internal/currency"
	"collectabase/internal/logging"
	"collectabase/internal/marketplace"
	"collectabase/internal/metadata"
	"collectabase/internal/resolver"
	"collectabase/internal/scrape"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce   sync.Once
	logger    *slog.Logger
	logCloser io.Closer
	logErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		// Credentials may live in a .env next to the working directory.
		_ = godotenv.Load()

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.logOnce.Do(func() {
		c.logger, c.logCloser, c.logErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.logErr
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

func (c *commandContext) openStore() (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Open(cfg.DatabasePath())
}

func (c *commandContext) newScraper() (*scrape.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return scrape.New(cfg.Scrape.BaseURL,
		scrape.WithLogger(logger),
		scrape.WithUserAgent(cfg.Scrape.UserAgent),
		scrape.WithTimeout(time.Duration(cfg.Scrape.TimeoutSeconds)*time.Second),
		scrape.WithPageDelay(time.Duration(cfg.Scrape.PageDelayMS)*time.Millisecond),
		scrape.WithMaxPages(cfg.Scrape.MaxPages),
	), nil
}

func (c *commandContext) newResolver(store *catalog.Store) (*resolver.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	scraper, err := c.newScraper()
	if err != nil {
		return nil, err
	}

	return resolver.New(store,
		resolver.WithScraper(scraper),
		resolver.WithMarketplace(marketplace.New(
			cfg.Marketplace.ClientID, cfg.Marketplace.ClientSecret,
			marketplace.WithLogger(logger))),
		resolver.WithMetadata(metadata.New(
			cfg.Metadata.ClientID, cfg.Metadata.ClientSecret,
			metadata.WithLogger(logger))),
		resolver.WithRates(currency.New(
			currency.WithBaseURL(cfg.Currency.BaseURL),
			currency.WithLogger(logger))),
		resolver.WithLogger(logger),
	)
}
