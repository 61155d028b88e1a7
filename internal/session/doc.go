// Package session implements the folder-activity tracking engine behind the
// Hopper daemon: filtering raw filesystem changes, grouping files that land in
// the same folder into upload batches, and promoting idle folders to completed
// batches on a fixed inactivity timeout.
//
// All shared state (the per-folder trackers, the bounded in-memory batch
// store, the run flag, and the watcher handle) is guarded by a single
// exclusive mutex owned by Session. Notifications and history persistence are
// always performed outside that lock.
package session
