// Package sqlite provides a SQLite-backed document source.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It stands in for the recruiting backend's
// document storage during local use: the CLI import command writes applicant documents
// into it, and the indexes are rebuilt from it on every start.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Document sections are stored as one JSON object per row.
//
// # Data Location
//
// By default, the database is stored at ~/.hirescope/data/documents.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
