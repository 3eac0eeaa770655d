package config

import "errors"

// Configuration validation errors returned by Config.Validate and the
// settings file loader. Package-level sentinels keep them matchable
// with errors.Is.
var (
	// ErrNoDataDir is returned when no database directory is configured.
	ErrNoDataDir = errors.New("no data directory configured")

	// ErrInvalidBatchSize is returned when the recorder batch size is
	// not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidFlushInterval is returned when the recorder flush
	// interval is not positive.
	ErrInvalidFlushInterval = errors.New("invalid flush interval: must be positive")

	// ErrSettingsNotFound is returned when the settings file does not
	// exist. Callers decide whether that is fatal based on whether the
	// path was explicitly specified.
	ErrSettingsNotFound = errors.New("settings file not found")
)
