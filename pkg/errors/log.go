package errors

import (
	"os"

	"github.com/rs/zerolog"
)

// LogHandler is an ErrorHandler that logs errors through zerolog.
type LogHandler struct {
	// Logger receives all reported errors and panics.
	Logger zerolog.Logger
	// Verbose enables stack trace output.
	Verbose bool
}

// NewLogHandler returns a LogHandler writing human-readable output to stderr.
func NewLogHandler() *LogHandler {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return &LogHandler{
		Logger: zerolog.New(writer).With().Timestamp().Logger(),
	}
}

// HandleError logs an EffectError.
func (h *LogHandler) HandleError(err *EffectError) {
	if err == nil {
		return
	}
	event := h.Logger.Error().
		Str("op", err.Op).
		Str("kind", err.Kind.String()).
		Err(err.Err)
	if h.Verbose && err.StackTrace != "" {
		event = event.Str("stack", err.StackTrace)
	}
	event.Msg("effect error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	event := h.Logger.Error().
		Str("op", err.Op).
		Interface("value", err.Value)
	if h.Verbose && err.StackTrace != "" {
		event = event.Str("stack", err.StackTrace)
	}
	event.Msg("recovered panic")
}
