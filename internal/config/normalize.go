package config

import (
	"os"
	"strings"
)

// Environment variables consulted for credentials left empty in the file.
const (
	envMarketplaceID     = "EBAY_CLIENT_ID"
	envMarketplaceSecret = "EBAY_CLIENT_SECRET"
	envMetadataID        = "IGDB_CLIENT_ID"
	envMetadataSecret    = "IGDB_CLIENT_SECRET"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	c.Scrape.BaseURL = strings.TrimRight(strings.TrimSpace(c.Scrape.BaseURL), "/")
	c.Scrape.UserAgent = strings.TrimSpace(c.Scrape.UserAgent)
	c.Currency.BaseURL = strings.TrimRight(strings.TrimSpace(c.Currency.BaseURL), "/")

	c.Marketplace.ClientID = fromEnvIfEmpty(c.Marketplace.ClientID, envMarketplaceID)
	c.Marketplace.ClientSecret = fromEnvIfEmpty(c.Marketplace.ClientSecret, envMarketplaceSecret)
	c.Metadata.ClientID = fromEnvIfEmpty(c.Metadata.ClientID, envMetadataID)
	c.Metadata.ClientSecret = fromEnvIfEmpty(c.Metadata.ClientSecret, envMetadataSecret)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func fromEnvIfEmpty(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv(key))
}
