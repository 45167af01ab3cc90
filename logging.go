package tasktree

import (
	"os"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the type used for every lifecycle event emitted by a tree:
// shutdown-requested, all-finished, shutdown-finished, subsystem failure,
// panic, timeout, dropped error, leaked handle. It is logiface's
// type-erased logger. New and NewWithShutdownToken always install
// NewDefaultLogger; no exported option replaces it.
type Logger = logiface.Logger[logiface.Event]

// NewDefaultLogger builds the default console logger: zerolog writing
// human-readable output to stderr, wrapped by logiface/izerolog exactly
// the way the backend's own tests construct one.
func NewDefaultLogger() *Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	zl := zerolog.New(w).With().Timestamp().Logger()
	return izerolog.L.New(
		izerolog.L.WithZerolog(zl),
		izerolog.L.WithLevel(izerolog.L.LevelInformational()),
	).Logger()
}

// nopLogger returns a logger with logging disabled, used by the package's
// tests.
func nopLogger() *Logger {
	return izerolog.L.New(
		izerolog.L.WithZerolog(zerolog.New(os.Stderr)),
		izerolog.L.WithLevel(izerolog.L.LevelDisabled()),
	).Logger()
}
