// Package batch defines the upload batch record and its lifecycle states.
//
// A batch groups files that arrived in one folder in close succession. It
// moves through uploading -> completed -> signed, never backwards; signed is
// terminal. The in-memory session store and the SQLite history store both
// traffic in these types, so status strings here are the wire and schema
// vocabulary for the whole application.
package batch
