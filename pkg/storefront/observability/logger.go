// Package observability provides logging, metrics, and tracing for the
// storefront event broker.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds emission context to a logger.
// Returns a new logger with emission_id, event, and depth fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, evt.ID, evt.Name, evt.Depth)
//	enriched.Info("rebuilding basket") // includes emission_id, event, depth
func EnrichLogger(logger *slog.Logger, emissionID, eventName string, depth int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("emission_id", emissionID),
		slog.String("event", eventName),
		slog.Int("depth", depth),
	)
}

// LogSubscribe logs a listener registration.
func LogSubscribe(logger *slog.Logger, key, listenerID string) {
	if logger == nil {
		return
	}
	logger.Debug("listener registered",
		slog.String("key", key),
		slog.String("listener_id", listenerID),
	)
}

// LogUnsubscribe logs a listener removal.
func LogUnsubscribe(logger *slog.Logger, key, listenerID string) {
	if logger == nil {
		return
	}
	logger.Debug("listener removed",
		slog.String("key", key),
		slog.String("listener_id", listenerID),
	)
}

// LogEmit logs the completion of a dispatch.
func LogEmit(logger *slog.Logger, emissionID, eventName string, listeners int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.String("emission_id", emissionID),
		slog.String("event", eventName),
		slog.Int("listeners", listeners),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogListenerError logs a listener failure. The failure is still returned
// to the emitter; this only records it.
func LogListenerError(logger *slog.Logger, emissionID, eventName, listenerID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener failed",
		slog.String("emission_id", emissionID),
		slog.String("event", eventName),
		slog.String("listener_id", listenerID),
		slog.String("error", err.Error()),
	)
}

// LogDeprecated warns that a deprecated event name was emitted.
func LogDeprecated(logger *slog.Logger, eventName, message string) {
	if logger == nil {
		return
	}
	logger.Warn("deprecated event emitted",
		slog.String("event", eventName),
		slog.String("message", message),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
