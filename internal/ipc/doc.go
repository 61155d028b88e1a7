// Package ipc implements JSON-RPC over a Unix domain socket between the
// hopper CLI and the hopperd daemon.
//
// The server registers a single "Hopper" service backed by the daemon.
// Expected operational outcomes (start refused, batch not signable, batch
// not found) travel in response fields so the CLI can render them; RPC
// errors are reserved for transport faults and invalid requests.
package ipc
