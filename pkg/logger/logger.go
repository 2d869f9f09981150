package logger

import (
	"log/slog"
	"os"
)

var Log *slog.Logger

func init() {
	// Usable default so packages can log before Init runs (tests,
	// early startup failures).
	Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}

// With returns a child logger carrying component attributes.
func With(args ...any) *slog.Logger {
	return Log.With(args...)
}
