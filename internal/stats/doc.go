// Package stats aggregates read-only diagnostics over the session
// database: entity counts, on-disk footprint, and the session time
// range. Nothing here is cached; every call reflects the persisted
// state at call time.
package stats
