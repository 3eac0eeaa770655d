// Package database provides SQLite-based storage for scanledger.
//
// This package implements the SessionDB, which stores:
//   - Scan sessions keyed by an opaque caller-supplied id
//   - Scan results, foreign-keyed to their session
//   - One progress row per session with upsert semantics
//
// SQLite (via modernc.org/sqlite) keeps the ledger a single CGO-free
// file on disk. The connection pool is pinned to one open connection:
// SQLite supports a single writer, and the ledger assumes no external
// concurrent writer to the same file.
//
// All multi-table mutations (batch inserts, session deletion, retention
// cleanup) run inside a single transaction so readers never observe a
// partially-applied change.
package database
