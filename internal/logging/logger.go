package logging

import (
	"log/slog"
	"os"
)

// Setup installs the global slog logger: JSON to stdout plus any extra
// handlers (the system_logs sink in production). Development runs log at debug.
func Setup(appEnv string, extra ...slog.Handler) {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}
	slog.SetDefault(slog.New(handler))
}
