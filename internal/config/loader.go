package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSettingsFile loads the persisted settings from a YAML file.
// The save-configuration operation accepts an opaque object, so the
// file is read back as a free-form map rather than a typed struct.
// If the file does not exist, it returns ErrSettingsNotFound.
func LoadSettingsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided settings path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	var settings map[string]any
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if settings == nil {
		settings = make(map[string]any)
	}
	return settings, nil
}

// SaveSettingsFile persists the opaque settings object as YAML,
// creating the parent directory when needed. The file is written with
// owner-only permissions: settings may carry credentials for the
// external scanning engine.
func SaveSettingsFile(path string, settings map[string]any) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// ScanSettingsFromMap extracts typed scan settings from an opaque
// settings object, falling back to defaults for absent fields. Numeric
// YAML/JSON values may arrive as int, int64, or float64.
func ScanSettingsFromMap(m map[string]any) ScanSettings {
	s := DefaultScanSettings()
	if m == nil {
		return s
	}
	if v, ok := intField(m, "item_delay_ms"); ok {
		s.ItemDelayMS = v
	}
	if v, ok := intField(m, "store_delay_ms"); ok {
		s.StoreDelayMS = v
	}
	if v, ok := intField(m, "page_timeout_ms"); ok {
		s.PageTimeoutMS = v
	}
	if v, ok := intField(m, "max_retries"); ok {
		s.MaxRetries = v
	}
	if v, ok := intField(m, "max_concurrent"); ok {
		s.MaxConcurrent = v
	}
	if v, ok := m["headless"].(bool); ok {
		s.Headless = v
	}
	return s
}

// intField reads a numeric map field regardless of decoder-dependent
// numeric type.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
