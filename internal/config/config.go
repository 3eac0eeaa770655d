package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "scanledger"

	// DefaultDaysToKeep is the retention age applied on startup:
	// sessions older than this many days are purged.
	DefaultDaysToKeep = 3

	// DefaultKeepCount is the default number of sessions kept by the
	// keep-latest retention policy.
	DefaultKeepCount = 10

	// DefaultBatchSize is how many result events the recorder buffers
	// before flushing them to the store in one transaction.
	DefaultBatchSize = 25

	// DefaultFlushInterval bounds how long buffered result events wait
	// before being flushed even when the batch is not full.
	DefaultFlushInterval = 5 * time.Second
)

// Bounds enforced on scan settings. The command gate rejects values
// outside these ranges before they reach the scanning engine.
const (
	// MinItemDelayMS / MaxItemDelayMS bound the delay between items.
	MinItemDelayMS = 500
	MaxItemDelayMS = 60000

	// MinStoreDelayMS / MaxStoreDelayMS bound the delay between stores.
	MinStoreDelayMS = 1000
	MaxStoreDelayMS = 120000

	// MinPageTimeoutMS / MaxPageTimeoutMS bound the per-page timeout.
	MinPageTimeoutMS = 5000
	MaxPageTimeoutMS = 120000

	// MaxRetryLimit bounds the per-item retry count.
	MaxRetryLimit = 10

	// MinConcurrent / MaxConcurrent bound the worker pool size.
	MinConcurrent = 1
	MaxConcurrent = 31
)

// DataDir returns the application's private data directory. The
// database file and the settings file live here.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// SettingsFileName is the name of the persisted settings file inside
// the data directory.
const SettingsFileName = "settings.yaml"

// SettingsPath returns the default path of the persisted settings file.
func SettingsPath() string {
	return filepath.Join(DataDir(), SettingsFileName)
}

// Config holds runtime configuration for the ledger, populated from CLI
// flags.
type Config struct {
	// DBDir is the directory holding the SQLite database file.
	DBDir string

	// DaysToKeep is the retention age applied on startup.
	DaysToKeep int

	// BatchSize is the recorder's flush threshold.
	BatchSize int

	// FlushInterval bounds how long buffered results wait for a flush.
	FlushInterval time.Duration

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// SkipStartupCleanup disables the retention pass on startup.
	SkipStartupCleanup bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		DBDir:         DataDir(),
		DaysToKeep:    DefaultDaysToKeep,
		BatchSize:     DefaultBatchSize,
		FlushInterval: DefaultFlushInterval,
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.DBDir == "" {
		return ErrNoDataDir
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.FlushInterval <= 0 {
		return ErrInvalidFlushInterval
	}
	return nil
}

// ScanSettings are the scanning-engine knobs carried in the nested
// settings object of the start-session operation. The ledger itself
// only uses ItemDelayMS (recorder pacing); the rest pass through to the
// external scanning engine.
type ScanSettings struct {
	// ItemDelayMS is the delay between items, in milliseconds.
	ItemDelayMS int `yaml:"item_delay_ms" json:"item_delay_ms"`

	// StoreDelayMS is the delay between stores, in milliseconds.
	StoreDelayMS int `yaml:"store_delay_ms" json:"store_delay_ms"`

	// PageTimeoutMS is the per-page load timeout, in milliseconds.
	PageTimeoutMS int `yaml:"page_timeout_ms" json:"page_timeout_ms"`

	// MaxRetries is the per-item retry ceiling.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// MaxConcurrent is the scanning engine's worker pool size.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`

	// Headless controls whether the scanning engine shows a browser.
	Headless bool `yaml:"headless" json:"headless"`
}

// DefaultScanSettings returns scan settings with conservative defaults
// that sit inside the enforced bounds.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		ItemDelayMS:   2000,
		StoreDelayMS:  5000,
		PageTimeoutMS: 30000,
		MaxRetries:    3,
		MaxConcurrent: 3,
		Headless:      true,
	}
}

// ItemDelay returns the inter-item delay as a duration.
func (s ScanSettings) ItemDelay() time.Duration {
	return time.Duration(s.ItemDelayMS) * time.Millisecond
}
