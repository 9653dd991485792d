// Package store persists batch run history to a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/huyahoo/answerphone-detection/internal/batch"
)

// Store provides access to the batch history database.
type Store struct {
	db *sql.DB
}

// BatchRecord is one persisted batch run.
type BatchRecord struct {
	ID             int64
	FolderID       string
	StartedAt      time.Time
	SuccessCount   int
	FailureCount   int
	DetectionCount int
	SuccessRate    float64
	DetectionRate  float64
	DurationMs     int64
}

// ItemRecord is one persisted batch item result.
type ItemRecord struct {
	ID            int64
	BatchID       int64
	ItemID        string
	Success       bool
	FailedStage   string
	Error         string
	Transcript    string
	Confidence    float64
	Detected      bool
	ContainerPath string
	DurationMs    int64
}

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	folderId TEXT NOT NULL,
	startedAt INTEGER NOT NULL,
	successCount INTEGER NOT NULL,
	failureCount INTEGER NOT NULL,
	detectionCount INTEGER NOT NULL,
	successRate REAL NOT NULL,
	detectionRate REAL NOT NULL,
	durationMs INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batchId INTEGER NOT NULL REFERENCES batches(id),
	itemId TEXT NOT NULL,
	success INTEGER NOT NULL,
	failedStage TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL DEFAULT '',
	confidence REAL NOT NULL DEFAULT 0,
	detected INTEGER NOT NULL DEFAULT 0,
	containerPath TEXT NOT NULL DEFAULT '',
	durationMs INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_batch ON items(batchId);
`

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSummary persists a batch summary and its item results in one
// transaction. Returns the assigned batch id.
func (s *Store) SaveSummary(summary *batch.Summary, startedAt time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO batches (folderId, startedAt, successCount, failureCount, detectionCount, successRate, detectionRate, durationMs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, summary.FolderID, startedAt.Unix(), summary.SuccessCount, summary.FailureCount,
		summary.DetectionCount, summary.SuccessRate, summary.DetectionRate, summary.DurationMs)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	batchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("batch id: %w", err)
	}

	for _, item := range summary.Items {
		_, err := tx.Exec(`
			INSERT INTO items (batchId, itemId, success, failedStage, error, transcript, confidence, detected, containerPath, durationMs)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, batchID, item.ID, boolToInt(item.Success), item.FailedStage, item.Error,
			item.Transcript, item.Confidence, boolToInt(item.Detected), item.ContainerPath, item.DurationMs)
		if err != nil {
			return 0, fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return batchID, nil
}

// RecentBatches returns the most recent batch runs, newest first.
func (s *Store) RecentBatches(limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, folderId, startedAt, successCount, failureCount, detectionCount, successRate, detectionRate, durationMs
		FROM batches
		ORDER BY startedAt DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchRecord
	for rows.Next() {
		var b BatchRecord
		var startedAt int64
		if err := rows.Scan(&b.ID, &b.FolderID, &startedAt, &b.SuccessCount, &b.FailureCount,
			&b.DetectionCount, &b.SuccessRate, &b.DetectionRate, &b.DurationMs); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.StartedAt = time.Unix(startedAt, 0)
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// ItemsForBatch returns all item results for a batch, in insertion order.
func (s *Store) ItemsForBatch(batchID int64) ([]ItemRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, batchId, itemId, success, failedStage, error, transcript, confidence, detected, containerPath, durationMs
		FROM items
		WHERE batchId = ?
		ORDER BY id ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		var item ItemRecord
		var success, detected int
		if err := rows.Scan(&item.ID, &item.BatchID, &item.ItemID, &success, &item.FailedStage,
			&item.Error, &item.Transcript, &item.Confidence, &detected, &item.ContainerPath, &item.DurationMs); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Success = success != 0
		item.Detected = detected != 0
		items = append(items, item)
	}
	return items, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
