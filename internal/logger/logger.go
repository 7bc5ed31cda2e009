package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes the global zerolog level and returns a logger writing to stdout.
//   - level: log level string (trace, debug, info, warn, error, fatal, panic)
//   - format: "json" for production, "pretty" for human-readable dev output
func Setup(level, format string) zerolog.Logger {
	lvl := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)
	return New(os.Stdout, format).Level(lvl)
}

// New builds a logger on w. Timestamps and caller are always attached.
func New(w io.Writer, format string) zerolog.Logger {
	var writer io.Writer = w
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
