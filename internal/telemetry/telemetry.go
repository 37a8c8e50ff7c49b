// Package telemetry initializes the process-wide structured logger.
// Grounded on the teacher's pkg/logger package: a package-level zerolog.Logger,
// initialized once from main, console-formatted for a human operator.
package telemetry

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log is the global logger. It starts as a no-op so any accidental use
// before Init is silent rather than noisy, matching the teacher's
// "safe until initialized" idiom.
var Log zerolog.Logger = zerolog.Nop()

// Init configures the global logger at the given level. It must be called
// exactly once, from cmd/mdc's main, before any other component logs.
func Init(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	writer := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000000",
	}

	Log = zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()

	return nil
}

// ParseLevel maps the CLI's --log-level values to zerolog.Level (spec §6:
// trace|debug|info|warn|error, default info).
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
