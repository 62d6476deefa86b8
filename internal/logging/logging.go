// Package logging configures the slog logger used by boostpkg.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelEnv is consulted when no level is given explicitly.
const LevelEnv = "BOOSTPKG_LOG_LEVEL"

// ParseLevel parses debug, info, warn (or warning) and error, ignoring case.
// The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a text logger writing to w. An empty level falls back to
// $BOOSTPKG_LOG_LEVEL. Debug logs carry their source location.
func New(w io.Writer, level string) (*slog.Logger, error) {
	if level == "" {
		level = os.Getenv(LevelEnv)
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})), nil
}

// Setup installs a logger on stderr as the slog default.
func Setup(level string) error {
	logger, err := New(os.Stderr, level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
