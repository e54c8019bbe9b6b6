// Package trace provides leveled tracing with an injectable output sink.
//
// A Tracer keeps an ordered list of levels, most severe first, and a
// current level. Entries at or above the current level are formatted as
//
//	[2025-01-02 15:04:05.000]: [INFO] message (key: "json value", ...)
//
// and handed to the Sink. Filtering happens before the sink, so sinks never
// filter. SlogSink forwards lines into a slog.Logger and NewHandler lets
// slog records flow through a Tracer.
package trace
