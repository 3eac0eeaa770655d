// Package export provides the default spreadsheet sink for session
// results.
//
// The ledger core only knows the command.Exporter interface; this
// package supplies a minimal implementation writing a single-sheet
// OOXML workbook with inline strings. A richer renderer (formatting,
// images, charts) can replace it without touching the core.
package export
