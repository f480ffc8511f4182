// Package logger configures the process-wide zerolog.Logger for structured
// logging.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/domain"
)

// New builds a zerolog.Logger writing console-formatted output to stderr,
// honoring LOG_LEVEL (DEBUG/INFO/WARN/ERROR, default INFO).
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := parseLevel(os.Getenv("LOG_LEVEL"))
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "INFO", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// LogError implements the one-shot logging discipline of spec.md §4.7/§9:
// on a *domain.Error's first emission the full payload (kind, context,
// cause) is logged; on any later emission only its synthetic id is logged.
// Errors that are not a *domain.Error are logged as-is, every time.
func LogError(log zerolog.Logger, msg string, err error) {
	derr, ok := err.(*domain.Error)
	if !ok {
		log.Error().Err(err).Msg(msg)
		return
	}

	id, first := derr.Emit()
	if !first {
		log.Error().Str("error_id", id).Msg(msg + " (repeat)")
		return
	}

	event := log.Error().Str("error_id", id).Str("kind", derr.Kind.String())
	for k, v := range derr.Context {
		event = event.Interface(k, v)
	}
	event.Err(derr.Cause).Msg(msg)
}
