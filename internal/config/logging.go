package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a dual-output logger: human-readable text to stderr,
// single-line JSON to stdout for machine parsing. The returned logger is
// also installed as the slog default.
func SetupLogger(level slog.Level) *slog.Logger {
	logger := NewLoggerWithWriters(os.Stderr, os.Stdout, level)
	slog.SetDefault(logger)
	return logger
}

// NewLoggerWithWriters builds the fanout logger against custom writers (for
// testing).
func NewLoggerWithWriters(text, jsonOut io.Writer, level slog.Level) *slog.Logger {
	textHandler := slog.NewTextHandler(text, &slog.HandlerOptions{Level: level})
	jsonHandler := slog.NewJSONHandler(jsonOut, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}
