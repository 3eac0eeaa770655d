// Package main provides the entry point for the scanledger CLI.
//
// scanledger is the local ledger behind a multi-store product scanning
// job: it records sessions, results, and progress in SQLite, exposes
// them for export, and prunes them with time- and count-based
// retention.
//
// Usage:
//
//	scanledger record --session <id> <events.jsonl>
//	scanledger sessions
//	scanledger stats --markdown
//
// See --help for all available options.
package main

// main is the entry point for scanledger.
func main() {
	Execute()
}
