package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application logger from the validated config. The
// global logger is left alone so that concurrent apps in tests stay isolated.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(handler)
	if len(cfg.DocumentPaths) == 1 {
		logger = logger.With("document", cfg.DocumentPaths[0])
	}
	return logger
}
