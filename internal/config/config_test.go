package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("exists = true for missing file")
	}
	if cfg.Scrape.BaseURL != "https://www.pricecharting.com" {
		t.Errorf("scrape base url = %q", cfg.Scrape.BaseURL)
	}
	if cfg.Scrape.MaxPages != 120 || cfg.Scrape.PageDelayMS != 400 {
		t.Errorf("scrape defaults = %+v", cfg.Scrape)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"

[scrape]
base_url = "https://guide.example/"
max_pages = 10

[logging]
level = "DEBUG"
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Errorf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Scrape.BaseURL != "https://guide.example" {
		t.Errorf("base url = %q, want trailing slash trimmed", cfg.Scrape.BaseURL)
	}
	if cfg.Scrape.MaxPages != 10 {
		t.Errorf("max pages = %d", cfg.Scrape.MaxPages)
	}
	if cfg.Scrape.TimeoutSeconds != 15 {
		t.Errorf("timeout = %d, want default preserved", cfg.Scrape.TimeoutSeconds)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want lowercased", cfg.Logging)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "catalog.db") {
		t.Errorf("database path = %q", cfg.DatabasePath())
	}
}

func TestCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("EBAY_CLIENT_ID", "env-id")
	t.Setenv("EBAY_CLIENT_SECRET", "env-secret")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Marketplace.ClientID != "env-id" || cfg.Marketplace.ClientSecret != "env-secret" {
		t.Errorf("marketplace = %+v, want environment credentials", cfg.Marketplace)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Scrape.MaxPages = 0
	cfg.Logging.Level = "loud"
	cfg.Marketplace.ClientID = "id-without-secret"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"max_pages", "logging.level", "credentials"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(raw), "[scrape]") {
		t.Error("sample missing scrape section")
	}
}
