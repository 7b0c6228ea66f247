package logging

import (
	"log/slog"
	"sync/atomic"
)

var traceEnabled atomic.Bool

// SetTrace turns trace logging on or off. Off by default to reduce noise.
func SetTrace(on bool) {
	traceEnabled.Store(on)
}

// TraceEnabled reports whether trace logging is on.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// Trace logs a message at DEBUG level, but only if tracing is on.
// Per-language detector output goes through here so that it costs a
// single atomic load when off.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if traceEnabled.Load() {
		logger.Debug(msg, args...)
	}
}
