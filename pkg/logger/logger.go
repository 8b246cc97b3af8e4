// Package logger configures the process-wide zerolog logger.
//
// Call Init once from main and pass the returned logger down by value;
// components that log hold their own zerolog.Logger field.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the output format and verbosity for Init.
type Options struct {
	// Level names the minimum severity: trace, debug, info, warn or error.
	// Anything else, including the empty string, means info.
	Level string
	// Pretty switches from JSON lines to the colourised console writer.
	// Keep it off outside local development.
	Pretty bool
	// Output receives the log stream. Nil means os.Stdout.
	Output io.Writer
}

var (
	root zerolog.Logger
	once sync.Once
)

// Init builds the root logger and sets the zerolog global level. Repeat
// calls return the logger from the first call unchanged.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		level := levelFromString(opts.Level)
		zerolog.SetGlobalLevel(level)

		root = zerolog.New(out).
			Level(level).
			With().
			Timestamp().
			Caller().
			Logger()
	})
	return root
}

func levelFromString(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
