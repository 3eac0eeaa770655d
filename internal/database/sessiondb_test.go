package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hiroakis/scanledger/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *SessionDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// insertSessionAt inserts a session row with an explicit start time.
// Retention tests need sessions that started in the past.
func insertSessionAt(t *testing.T, db *SessionDB, id string, start time.Time, totalItems int) {
	t.Helper()

	_, err := db.db.ExecContext(context.Background(), `
	INSERT INTO sessions (session_id, start_time, total_items, status)
	VALUES (?, ?, ?, ?)
	`, id, formatTime(start), totalItems, string(model.StatusRunning))
	if err != nil {
		t.Fatalf("failed to insert session %s: %v", id, err)
	}
}

// testResult returns a populated result for insertion tests.
func testResult(store, itemCode string, success bool) *model.ScanResult {
	r := &model.ScanResult{
		Store:      store,
		ItemCode:   itemCode,
		Success:    success,
		Timestamp:  time.Now(),
		LoadTime:   1200 * time.Millisecond,
		RetryCount: 1,
	}
	if success {
		r.Name = "Example Item"
		r.Price = "$19.99"
		r.ImageURL = "https://img.example.com/" + itemCode + ".jpg"
		r.ProductURL = "https://shop.example.com/dp/" + itemCode
		r.Variants = []model.Variant{{Code: "B000000001", Label: "Blue", Price: "$19.99"}}
		r.BundleParts = []model.BundlePart{{Code: "B000000002", Name: "Cable", Quantity: 2}}
		r.Details = map[string]string{"brand": "Example"}
		r.MerchData = map[string]any{"rank": float64(42)}
	} else {
		r.ErrorMessage = "page timeout"
	}
	return r
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, DBFileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		opts := Options{CreateIfNotExists: false, EnableWAL: true}

		if _, err := Open(dbDir, opts); err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := db1.CreateSession(context.Background(), "persisted", 1); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if err := db1.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()

		session, err := db2.GetSession(context.Background(), "persisted")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if session == nil {
			t.Error("session did not survive reopen")
		}
	})
}

// TestVacuum verifies that space reclamation succeeds on an idle store.
func TestVacuum(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if err := db.Vacuum(context.Background()); err != nil {
		t.Errorf("vacuum failed: %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "canonical RFC3339",
			input: "2026-08-27T10:30:00Z",
			want:  time.Date(2026, 8, 27, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "sqlite default format",
			input: "2026-08-27 10:30:00",
			want:  time.Date(2026, 8, 27, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "unparseable returns zero time",
			input: "not-a-timestamp",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
