package common

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger the binaries share.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
