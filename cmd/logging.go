package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/nextlevelbuilder/kitedash/internal/config"
)

// logLevel is shared by the default handler so hot reload can change it.
var logLevel = new(slog.LevelVar)

func setupLogging(cfg config.LogConfig) {
	applyLogLevel(cfg.Level)

	opts := &slog.HandlerOptions{Level: logLevel}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func applyLogLevel(level string) {
	if verbose {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(parseLevel(level))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
