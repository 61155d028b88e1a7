// Package daemon coordinates the watch session, batch history, and
// notifications behind a single-instance lock.
//
// The Daemon is the authority the IPC layer talks to: session start and stop,
// batch signing and clearing, history reads, and notification tests all pass
// through it. A flock file enforces that only one hopperd instance watches a
// folder tree at a time.
package daemon
