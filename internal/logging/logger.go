// Package logging builds the zerolog logger used by the CLI and the pipeline.
//
// Console output is the default for interactive use; JSON is meant for
// scheduled runs whose output is collected:
//
//	log, err := logging.New("info", "json", os.Stderr)
//	log.Info().Str("file", name).Msg("loaded")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. Format is "console"
// or "json".
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console", "text":
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format: %s", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel maps debug, info, warn, error and disabled to zerolog levels.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
