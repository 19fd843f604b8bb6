// Package log constructs the structured loggers used across the CropGo
// pipeline. Loggers are zerolog instances; error values created by
// pkg/errors carry cockroachdb stack traces which are rendered into a
// stacktrace field when logged with Stack().
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.ErrorStackMarshaler = MarshalStack
}

// MarshalStack renders an error's stack trace for the zerolog stack field.
// cockroachdb/errors exposes the trace through the %+v verb.
func MarshalStack(err error) interface{} {
	return fmt.Sprintf("%+v", err)
}

// New creates a JSON logger writing to stderr at the given level.
func New(level string) zerolog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewConsole creates a human-readable console logger writing to stderr.
func NewConsole(level string) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(ToLevel(level)).With().Timestamp().Logger()
}

// NewWriter creates a JSON logger writing to w at the given level.
func NewWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ToLevel(level)).With().Timestamp().Logger()
}

// ToLevel converts a level name to a zerolog level.
func ToLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}
