// Package logs reads hopperd log files on behalf of the CLI.
//
// Tail supports two access patterns: a negative offset fetches the last N
// lines for `hopper logs`, and a byte offset resumes reading where the
// previous call stopped, which drives follow mode over repeated IPC polls.
// Reads are line-oriented with bounded buffers, and a missing file is treated
// as empty so tailing works while the daemon writes its first log.
package logs
