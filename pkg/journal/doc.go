// Package journal records resolved admission decisions for offline
// inspection.
//
// A journal backend implements ratelimit.Recorder and is attached to a
// limiter with ratelimit.WithRecorder. Entries flow one way: the journal is
// an audit trail, never an input to admission decisions, so limiters start
// with empty histories on every process start regardless of what the
// journal contains.
//
// Two backends are provided:
//
//   - Memory: a bounded in-memory ring, useful in tests and for exposing
//     recent decisions over an admin surface.
//   - SQLite: durable storage via modernc.org/sqlite with an asynchronous
//     writer, plus Query and Prune for inspection and retention.
//
// Pruner and Scheduler implement scheduled retention for the SQLite
// backend using cron expressions.
package journal
