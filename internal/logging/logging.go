// Package logging configures the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"collectabase/internal/config"
)

// Options controls logger construction.
type Options struct {
	Level  string
	Format string
	// FilePath, when set, tees log output into the given file.
	FilePath string
}

// New builds a logger writing to stderr, plus the configured file if any.
// The returned closer releases the log file handle and is non-nil even when
// no file is used.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var writer io.Writer = os.Stderr
	closer := io.Closer(nopCloser{})
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writer = io.MultiWriter(os.Stderr, file)
		closer = file
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}
	return slog.New(handler), closer, nil
}

// NewFromConfig builds the logger described by the configuration, writing a
// copy into collectabase.log under the configured log directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	return New(Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: filepath.Join(cfg.Paths.LogDir, "collectabase.log"),
	})
}

// InteractiveConsole reports whether stdout is attached to a terminal.
func InteractiveConsole() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
