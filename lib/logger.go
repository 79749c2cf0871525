package lib

import (
	"log/slog"
	"os"
)

var logLevel = new(slog.LevelVar)

// ConfigureLogging installs a text handler on stderr as the default logger.
// The level comes from MINIREL_LOG_LEVEL and defaults to Info.
func ConfigureLogging() {
	logLevel.Set(slog.LevelInfo)

	switch os.Getenv("MINIREL_LOG_LEVEL") {
	case "DEBUG":
		logLevel.Set(slog.LevelDebug)
	case "WARN":
		logLevel.Set(slog.LevelWarn)
	case "ERROR":
		logLevel.Set(slog.LevelError)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}
