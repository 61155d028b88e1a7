// Package history persists upload batches in SQLite so signed and completed
// work survives daemon restarts.
//
// The Store keeps a flat mirror of the daemon's in-memory batch list: every
// save replaces the whole table inside one transaction, preserving the
// newest-first ordering through an explicit position column. Reads are served
// to the CLI through List and the health checks without touching the live
// session state.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package history
