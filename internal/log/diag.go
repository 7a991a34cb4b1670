package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// NewDiagnostics constructs the zerolog.Logger used for operator-facing
// diagnostics. Warnings and above are shown unless debug is set; a terminal
// gets the human-readable console writer.
func NewDiagnostics(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	}

	return logger
}
