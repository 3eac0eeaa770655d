package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DBFileName is the name of the SQLite database file inside the data
// directory.
const DBFileName = "scanledger.db"

// timeFormat is the canonical format for timestamp columns. All
// timestamps are stored as UTC RFC3339 text so that lexical comparison
// in SQL matches chronological order.
const timeFormat = time.RFC3339

// SessionDB provides SQLite-based storage for scan sessions, results,
// and progress. It manages a single connection and provides methods for
// all read/write access paths.
type SessionDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SessionDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SessionDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*SessionDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation. foreign_keys is a
	// per-connection pragma, so it rides the DSN to survive connection
	// recycling; results must always reference an existing session.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}
	dsn += "&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer. Pinning the pool to a single
	// connection also serializes mutating operations, which the ledger's
	// concurrency model requires.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SessionDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *SessionDB) Close() error {
	return sdb.db.Close()
}

// Path returns the path to the SQLite database file.
func (sdb *SessionDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SessionDB) createTables() error {
	schema := `
	-- Sessions store one row per scanning job run
	CREATE TABLE IF NOT EXISTS sessions (
		session_id  TEXT PRIMARY KEY,
		start_time  DATETIME NOT NULL,
		end_time    DATETIME,
		total_items INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL DEFAULT 'running'
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);

	-- Results store one row per scanned item outcome
	CREATE TABLE IF NOT EXISTS results (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id    TEXT NOT NULL REFERENCES sessions(session_id),
		store         TEXT NOT NULL,
		item_code     TEXT NOT NULL,
		success       INTEGER NOT NULL DEFAULT 0,
		timestamp     DATETIME NOT NULL,
		name          TEXT,
		price         TEXT,
		image_url     TEXT,
		product_url   TEXT,
		load_time_ms  INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		retry_count   INTEGER NOT NULL DEFAULT 0,
		variants      TEXT,
		bundle_parts  TEXT,
		details       TEXT,
		merch_data    TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_session ON results(session_id);
	CREATE INDEX IF NOT EXISTS idx_results_store ON results(store);
	CREATE INDEX IF NOT EXISTS idx_results_item ON results(item_code);
	CREATE INDEX IF NOT EXISTS idx_results_success ON results(success);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON results(timestamp);

	-- Progress stores at most one row per session
	CREATE TABLE IF NOT EXISTS progress (
		session_id    TEXT PRIMARY KEY,
		current_store TEXT,
		current_index INTEGER NOT NULL DEFAULT 0,
		total_items   INTEGER NOT NULL DEFAULT 0,
		updated_at    DATETIME NOT NULL
	);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// Vacuum reclaims physical storage freed by prior deletions.
// It must not run while a write transaction is open; with the pool
// pinned to one connection this holds as long as no transaction from
// this SessionDB is in flight.
func (sdb *SessionDB) Vacuum(ctx context.Context) error {
	if _, err := sdb.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// formatTime renders a timestamp in the canonical column format.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,              // Canonical column format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
