package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range cases {
		level, err := parseLevel(tc.raw)
		if err != nil {
			t.Errorf("parseLevel(%q) failed: %v", tc.raw, err)
			continue
		}
		if level != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.raw, level, tc.want)
		}
	}

	if _, err := parseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.log")

	logger, closer, err := New(Options{Level: "debug", FilePath: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("hello", slog.String("k", "v"))
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), "hello") || !strings.Contains(string(raw), "k=v") {
		t.Errorf("log contents = %q", raw)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "nope"}); err == nil {
		t.Error("expected error for bad level")
	}
}
