package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hiroakis/scanledger/internal/model"
)

// resultColumns is the column list shared by all result queries.
const resultColumns = `
	id, session_id, store, item_code, success, timestamp,
	name, price, image_url, product_url, load_time_ms,
	error_message, retry_count, variants, bundle_parts, details, merch_data
`

// execer abstracts *sql.DB and *sql.Tx so single and batched inserts
// share one code path.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertResult inserts one result row and returns its sequence number.
// The four variable-shaped payloads are serialized to JSON text columns.
// An insert referencing an unknown session id returns ErrConstraint.
func (sdb *SessionDB) InsertResult(ctx context.Context, sessionID string, result *model.ScanResult) (int64, error) {
	id, err := insertResult(ctx, sdb.db, sessionID, result)
	if err != nil {
		return 0, err
	}
	result.ID = id
	return id, nil
}

// insertResult writes one result row through the given execer.
func insertResult(ctx context.Context, ex execer, sessionID string, result *model.ScanResult) (int64, error) {
	variantsJSON, err := marshalPayload(result.Variants)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize variants: %w", err)
	}
	bundleJSON, err := marshalPayload(result.BundleParts)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize bundle parts: %w", err)
	}
	detailsJSON, err := marshalPayload(result.Details)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize details: %w", err)
	}
	merchJSON, err := marshalPayload(result.MerchData)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize merch data: %w", err)
	}

	timestamp := result.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	query := `
	INSERT INTO results (
		session_id, store, item_code, success, timestamp,
		name, price, image_url, product_url, load_time_ms,
		error_message, retry_count, variants, bundle_parts, details, merch_data
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := ex.ExecContext(ctx, query,
		sessionID,
		result.Store,
		result.ItemCode,
		boolToInt(result.Success),
		formatTime(timestamp),
		result.Name,
		result.Price,
		result.ImageURL,
		result.ProductURL,
		result.LoadTime.Milliseconds(),
		result.ErrorMessage,
		result.RetryCount,
		variantsJSON,
		bundleJSON,
		detailsJSON,
		merchJSON,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert result for session %s: %w", sessionID, ErrConstraint)
		}
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read result id: %w", err)
	}
	return id, nil
}

// InsertBatch inserts a sequence of results inside a single transaction.
// The batch is all-or-nothing: if any insert fails, every row is rolled
// back and a *BatchError is returned. The rollback completes before the
// error is returned, so no caller can observe a partial count. Rows are
// written in the order supplied.
func (sdb *SessionDB) InsertBatch(ctx context.Context, sessionID string, results []*model.ScanResult) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin batch transaction: %w", err)
	}

	// Every insert is attempted so the error can report how many rows
	// failed, then the whole transaction is rolled back if any did.
	var (
		failed   int
		firstErr error
	)
	for _, result := range results {
		id, err := insertResult(ctx, tx, sessionID, result)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.ID = id
	}

	if failed > 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			return 0, fmt.Errorf("failed to roll back batch after insert error %v: %w", firstErr, rbErr)
		}
		return 0, &BatchError{
			SessionID: sessionID,
			Failed:    failed,
			Err:       firstErr,
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return len(results), nil
}

// GetResultCount returns the number of results recorded for a session.
func (sdb *SessionDB) GetResultCount(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := sdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM results WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

// GetResultsRange returns a page of results for a session, newest first.
// Payload columns are deserialized back into structured values.
func (sdb *SessionDB) GetResultsRange(ctx context.Context, sessionID string, offset, limit int) ([]*model.ScanResult, error) {
	query := `
	SELECT ` + resultColumns + `
	FROM results
	WHERE session_id = ?
	ORDER BY id DESC
	LIMIT ? OFFSET ?
	`

	rows, err := sdb.db.QueryContext(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*model.ScanResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// StreamResults invokes visit once per result row for a session, in
// ascending insertion order, without materializing the whole result set.
// If visit returns an error, iteration stops and the error is returned.
func (sdb *SessionDB) StreamResults(ctx context.Context, sessionID string, visit func(*model.ScanResult) error) error {
	query := `
	SELECT ` + resultColumns + `
	FROM results
	WHERE session_id = ?
	ORDER BY id ASC
	`

	rows, err := sdb.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return fmt.Errorf("failed to scan result row: %w", err)
		}
		if err := visit(result); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GetStatistics computes aggregate counts, the mean load time, and the
// first/last result timestamps for a session.
func (sdb *SessionDB) GetStatistics(ctx context.Context, sessionID string) (*model.SessionStatistics, error) {
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(success), 0),
		COALESCE(AVG(load_time_ms), 0),
		COALESCE(MIN(timestamp), ''),
		COALESCE(MAX(timestamp), '')
	FROM results
	WHERE session_id = ?
	`

	var (
		stats     model.SessionStatistics
		avgLoadMS float64
		first     string
		last      string
	)
	err := sdb.db.QueryRowContext(ctx, query, sessionID).Scan(
		&stats.Total,
		&stats.SuccessCount,
		&avgLoadMS,
		&first,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	stats.FailedCount = stats.Total - stats.SuccessCount
	stats.AvgLoadTime = time.Duration(avgLoadMS) * time.Millisecond
	if first != "" {
		stats.FirstResult = parseTimestamp(first)
	}
	if last != "" {
		stats.LastResult = parseTimestamp(last)
	}
	return &stats, nil
}

// scanResult reads one results row into a model.ScanResult.
func scanResult(row rowScanner) (*model.ScanResult, error) {
	var (
		result     model.ScanResult
		success    int
		timestamp  string
		name       sql.NullString
		price      sql.NullString
		imageURL   sql.NullString
		productURL sql.NullString
		loadTimeMS int64
		errMsg     sql.NullString
		variants   sql.NullString
		bundles    sql.NullString
		details    sql.NullString
		merch      sql.NullString
	)

	if err := row.Scan(
		&result.ID,
		&result.SessionID,
		&result.Store,
		&result.ItemCode,
		&success,
		&timestamp,
		&name,
		&price,
		&imageURL,
		&productURL,
		&loadTimeMS,
		&errMsg,
		&result.RetryCount,
		&variants,
		&bundles,
		&details,
		&merch,
	); err != nil {
		return nil, err
	}

	result.Success = success != 0
	result.Timestamp = parseTimestamp(timestamp)
	result.Name = name.String
	result.Price = price.String
	result.ImageURL = imageURL.String
	result.ProductURL = productURL.String
	result.LoadTime = time.Duration(loadTimeMS) * time.Millisecond
	result.ErrorMessage = errMsg.String

	if err := unmarshalPayload(variants, &result.Variants); err != nil {
		return nil, fmt.Errorf("failed to parse variants: %w", err)
	}
	if err := unmarshalPayload(bundles, &result.BundleParts); err != nil {
		return nil, fmt.Errorf("failed to parse bundle parts: %w", err)
	}
	if err := unmarshalPayload(details, &result.Details); err != nil {
		return nil, fmt.Errorf("failed to parse details: %w", err)
	}
	if err := unmarshalPayload(merch, &result.MerchData); err != nil {
		return nil, fmt.Errorf("failed to parse merch data: %w", err)
	}
	return &result, nil
}

// marshalPayload serializes a variable-shaped payload to a JSON text
// column. Empty payloads are stored as empty strings, not "null".
func marshalPayload(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return "", nil
	}
	return string(data), nil
}

// unmarshalPayload rehydrates a JSON text column into dst, leaving dst
// untouched for NULL or empty columns.
func unmarshalPayload(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

// boolToInt converts a bool to the INTEGER representation used by the
// success column.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
