// Package report renders diagnostic views of the ledger: database
// stats, the session list, and per-store result counts.
//
// Two formats are provided: Markdown (for sharing and documentation)
// and JSON (for tool integration). Both implement the Writer interface
// so commands can select a format without caring about the rendering.
package report
