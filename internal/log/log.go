package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var (
	// L is the shared logger (use log.L.Info().Msg("hi"))
	L zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	L = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// SetLevel changes the global level for every logger derived from L.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// SetOutput redirects L to w, keeping the timestamp context.
func SetOutput(w io.Writer) {
	L = zerolog.New(w).With().Timestamp().Logger()
}

// With returns a child of L tagged with the component name.
func With(component string) zerolog.Logger {
	return L.With().Str("component", component).Logger()
}

// Debug starts a debug level event on L.
func Debug() *zerolog.Event { return L.Debug() }

// Info starts an info level event on L.
func Info() *zerolog.Event { return L.Info() }

// Warn starts a warn level event on L.
func Warn() *zerolog.Event { return L.Warn() }

// Error starts an error level event on L.
func Error() *zerolog.Event { return L.Error() }
