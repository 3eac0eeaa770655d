// Package model defines the core data structures used throughout scanledger.
//
// This package contains the following main types:
//   - ScanSession: One complete run of the scanning job
//   - ScanResult: One recorded outcome for one item within one store
//   - ScanProgress: The latest progress tick for a session
//   - SessionStatistics: Per-session aggregate counts and timings
//   - DatabaseStats: Whole-database diagnostics
//
// Models live in their own package because multiple packages (store,
// retention, command, report) need them; centralizing them prevents
// import cycles.
//
// The models are designed to be serializable to JSON for the command
// surface and for the variable-shaped payload columns in the database.
package model
