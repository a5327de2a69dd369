package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns the process-wide structured JSON logger. The minimum level is
// read from GYMPASS_LOG_LEVEL (debug, info, warn, error); unset or
// unrecognized values fall back to info.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})
	return slog.New(handler).With(slog.String("service", "gympass"))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("GYMPASS_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
