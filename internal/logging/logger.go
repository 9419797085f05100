package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
// Development environments also emit debug records.
func Setup(appEnv string) {
	slog.SetDefault(slog.New(StdoutHandler(appEnv)))
}

func StdoutHandler(appEnv string) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFor(appEnv),
	})
}

func levelFor(appEnv string) slog.Level {
	if appEnv == "dev" || appEnv == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
