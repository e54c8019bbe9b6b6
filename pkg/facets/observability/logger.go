// Package observability provides the instrumentation used by the facets
// engines: structured logging, metrics, and tracing.
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

// EnrichLogger adds facet context to a logger.
// Returns a new logger with facet and name fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "hook", "save")
//	enriched.Info("latched") // includes facet=hook, name=save
func EnrichLogger(logger *slog.Logger, facet, name string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("facet", facet),
		slog.String("name", name),
	)
}

// LogHookStart logs the start of a hook invocation.
func LogHookStart(logger *slog.Logger, name string, callbacks int) {
	if logger == nil {
		return
	}
	logger.Debug("hook starting",
		slog.String("hook", name),
		slog.Int("callbacks", callbacks),
	)
}

// LogHookRepeat logs a Repeat result restarting the traversal.
func LogHookRepeat(logger *slog.Logger, name string, round int, bucket string) {
	if logger == nil {
		return
	}
	logger.Debug("hook repeating",
		slog.String("hook", name),
		slog.Int("round", round),
		slog.String("bucket", bucket),
	)
}

// LogHookComplete logs a completed hook invocation.
func LogHookComplete(logger *slog.Logger, name string, outcome string, rounds int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("hook completed",
		slog.String("hook", name),
		slog.String("outcome", outcome),
		slog.Int("rounds", rounds),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogHookError logs a hook invocation aborted by a callback error.
func LogHookError(logger *slog.Logger, name string, err error, rounds int) {
	if logger == nil {
		return
	}
	logger.Error("hook failed",
		slog.String("hook", name),
		slog.String("error", err.Error()),
		slog.Int("rounds", rounds),
	)
}

// LogDispatch logs one dispatch of a name.
func LogDispatch(logger *slog.Logger, name string, delivered, deferred int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatched",
		slog.String("name", name),
		slog.Int("delivered", delivered),
		slog.Int("deferred", deferred),
	)
}

// LogSnapshot logs a stored snapshot.
func LogSnapshot(logger *slog.Logger, ownerID, name string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("snapshot saved",
		slog.String("owner_id", ownerID),
		slog.String("name", name),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogSnapshotError logs a snapshot failure.
func LogSnapshotError(logger *slog.Logger, ownerID, name, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("snapshot failed",
		slog.String("owner_id", ownerID),
		slog.String("name", name),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
