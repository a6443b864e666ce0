package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default returns the built-in configuration. Credentials default to empty;
// the marketplace and metadata sources are skipped until they are set.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir(),
			LogDir:  filepath.Join(defaultDataDir(), "logs"),
		},
		Scrape: Scrape{
			BaseURL:        "https://www.pricecharting.com",
			UserAgent:      "Mozilla/5.0 (compatible; Collectabase/1.0)",
			TimeoutSeconds: 15,
			PageDelayMS:    400,
			MaxPages:       120,
		},
		Currency: Currency{
			BaseURL: "https://api.frankfurter.app",
		},
		Logging: Logging{
			Format: "text",
			Level:  "info",
		},
	}
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "collectabase")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/share/collectabase"
	}
	return filepath.Join(home, ".local", "share", "collectabase")
}
