// Package snapshot stores serialized facet documents keyed by the owning
// instance's identifier and a snapshot name.
//
// Two Store implementations are provided:
//
//	store := snapshot.NewMemoryStore()
//	store, err := snapshot.NewSQLiteStore("./snapshots.db")
//
// Saving an existing (owner, name) pair replaces the document and moves it
// to the end of the owner's sequence, so List always reports the most
// recently saved snapshot last.
//
// Observe decorates any Store with slog logging, OpenTelemetry spans and
// document size metrics. Snapshot is an optional JSON envelope carrying a
// version, the owner, a name and a timestamp next to the document.
package snapshot
