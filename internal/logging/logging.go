// internal/logging/logging.go
package logging

import (
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New builds the run logger: leveled console output with a run identifier on
// every event. quiet raises the floor to errors only. An unparseable level
// falls back to info.
func New(w io.Writer, level string, quiet bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if quiet {
		lvl = zerolog.ErrorLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(cw).Level(lvl).With().
		Timestamp().
		Str("run_id", uuid.NewString()[:8]).
		Logger()
}

// Component tags a sub-logger with the pipeline stage it belongs to.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
