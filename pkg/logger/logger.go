// pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the process logger handed to each job at startup
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = New(os.Stdout, "console", zerolog.InfoLevel)
}

// New builds a logger writing to out. format is either "console" or "json".
func New(out io.Writer, format string, level zerolog.Level) zerolog.Logger {
	var w io.Writer = out
	if !strings.EqualFold(strings.TrimSpace(format), "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// ParseLevel returns the zerolog level for levelStr, defaulting to info.
func ParseLevel(levelStr string) (zerolog.Level, bool) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, false
	}
	return level, true
}

// Init replaces Log with a logger configured from the given level and format.
func Init(levelStr, format string) zerolog.Logger {
	level, ok := ParseLevel(levelStr)
	Log = New(os.Stdout, format, level)
	if !ok {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
	}
	zerolog.SetGlobalLevel(level)
	return Log
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level, ok := ParseLevel(levelStr)
	if !ok {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
