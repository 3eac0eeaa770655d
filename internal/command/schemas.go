package command

import (
	"time"

	"github.com/hiroakis/scanledger/internal/config"
	"github.com/hiroakis/scanledger/internal/gate"
)

// Operation names of the administrative command surface.
const (
	OpStartSession  = "start-session"
	OpStopSession   = "stop-session"
	OpExportResults = "export-results"
	OpSaveConfig    = "save-config"
	OpDatabaseStats = "db-stats"
	OpListSessions  = "list-sessions"
	OpDeleteSession = "delete-session"
	OpCleanupOld    = "cleanup-old-sessions"
	OpKeepLatest    = "keep-latest-scans"
)

// spreadsheetExts are the extensions accepted for source spreadsheets.
var spreadsheetExts = []string{".xlsx", ".xls"}

// itemListExts are the extensions accepted for item list files.
var itemListExts = []string{".xlsx", ".xls", ".csv"}

// Schemas declares the validation schema for each guarded operation.
// Maintenance operations take only primitive arguments and are checked
// by their handlers rather than a schema.
func Schemas() map[string]gate.Schema {
	itemDelayMin, itemDelayMax := gate.Bounds(config.MinItemDelayMS, config.MaxItemDelayMS)
	storeDelayMin, storeDelayMax := gate.Bounds(config.MinStoreDelayMS, config.MaxStoreDelayMS)
	timeoutMin, timeoutMax := gate.Bounds(config.MinPageTimeoutMS, config.MaxPageTimeoutMS)
	retriesMin, retriesMax := gate.Bounds(0, config.MaxRetryLimit)
	workersMin, workersMax := gate.Bounds(config.MinConcurrent, config.MaxConcurrent)
	totalMin := 0.0

	return map[string]gate.Schema{
		OpStartSession: {
			"mapping_file": {
				Type:     gate.TypeString,
				Required: true,
				MaxLen:   4096,
				Check:    gate.SourceFileCheck(spreadsheetExts, nil),
			},
			"item_list": {
				Type:   gate.TypeString,
				MaxLen: 4096,
				Check:  gate.SourceFileCheck(itemListExts, nil),
			},
			"total_items": {
				Type: gate.TypeNumber,
				Min:  &totalMin,
			},
			"settings": {
				Type: gate.TypeObject,
				Fields: gate.Schema{
					"item_delay_ms":   {Type: gate.TypeNumber, Min: itemDelayMin, Max: itemDelayMax},
					"store_delay_ms":  {Type: gate.TypeNumber, Min: storeDelayMin, Max: storeDelayMax},
					"page_timeout_ms": {Type: gate.TypeNumber, Min: timeoutMin, Max: timeoutMax},
					"max_retries":     {Type: gate.TypeNumber, Min: retriesMin, Max: retriesMax},
					"max_concurrent":  {Type: gate.TypeNumber, Min: workersMin, Max: workersMax},
					"headless":        {Type: gate.TypeBool},
				},
			},
		},

		OpStopSession: {},

		OpExportResults: {
			"output_file": {
				Type:     gate.TypeString,
				Required: true,
				MaxLen:   4096,
				Check:    gate.ExportPathCheck(nil),
			},
			"session_id": {
				Type:   gate.TypeString,
				MaxLen: 128,
			},
		},

		// The configuration object is deliberately opaque: it is
		// accepted as-is and persisted without a sub-schema.
		OpSaveConfig: {
			"config": {
				Type:     gate.TypeObject,
				Required: true,
			},
		},
	}
}

// RateRules declares the per-operation call ceilings. Windows slide:
// the ceiling applies to any window-sized interval ending now.
func RateRules() map[string]gate.Rule {
	return map[string]gate.Rule{
		OpStartSession:  {Ceiling: 1, Window: time.Minute},
		OpStopSession:   {Ceiling: 10, Window: time.Minute},
		OpExportResults: {Ceiling: 5, Window: time.Minute},
		OpSaveConfig:    {Ceiling: 30, Window: time.Minute},
		OpDeleteSession: {Ceiling: 10, Window: time.Minute},
		OpCleanupOld:    {Ceiling: 10, Window: time.Minute},
		OpKeepLatest:    {Ceiling: 10, Window: time.Minute},
	}
}
