// Package usage records enrichment attempts in SQLite. The ledger is
// what the product's usage dashboards and billing reads are built on.
package usage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the ledger database handle.
type DB struct {
	*sql.DB
}

// Record is one enrichment attempt.
type Record struct {
	ID             int64     `json:"id"`
	AttemptID      string    `json:"attempt_id"`
	Subject        string    `json:"subject"`
	ProviderID     string    `json:"provider_id,omitempty"`
	Outcome        string    `json:"outcome"`
	PhoneRequested bool      `json:"phone_requested"`
	PhoneDelivered bool      `json:"phone_delivered"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// Outcome values recorded per attempt.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Stats aggregates the ledger for dashboards.
type Stats struct {
	TotalAttempts   int `json:"total_attempts"`
	SuccessAttempts int `json:"success_attempts"`
	FailedAttempts  int `json:"failed_attempts"`
	PhonesDelivered int `json:"phones_delivered"`
}

// Init opens (or creates) the ledger at dbPath and applies migrations.
func Init(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapper := &DB{db}
	if err := wrapper.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return wrapper, nil
}

func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS enrichment_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			attempt_id TEXT NOT NULL,
			subject TEXT NOT NULL,
			provider_id TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			phone_requested INTEGER NOT NULL DEFAULT 0,
			phone_delivered INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON enrichment_attempts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_subject ON enrichment_attempts(subject)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// RecordAttempt appends one attempt to the ledger.
func (db *DB) RecordAttempt(r *Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	result, err := db.Exec(
		`INSERT INTO enrichment_attempts
			(attempt_id, subject, provider_id, outcome, phone_requested, phone_delivered, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.AttemptID, r.Subject, r.ProviderID, r.Outcome,
		r.PhoneRequested, r.PhoneDelivered, r.DurationMs, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	r.ID, _ = result.LastInsertId()
	return nil
}

// RecentAttempts returns the newest attempts, up to limit.
func (db *DB) RecentAttempts(limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(
		`SELECT id, attempt_id, subject, provider_id, outcome,
			phone_requested, phone_delivered, duration_ms, created_at
		 FROM enrichment_attempts
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r := &Record{}
		if err := rows.Scan(&r.ID, &r.AttemptID, &r.Subject, &r.ProviderID, &r.Outcome,
			&r.PhoneRequested, &r.PhoneDelivered, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetStats aggregates attempt totals for the dashboard.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}
	err := db.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome != ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phone_delivered THEN 1 ELSE 0 END), 0)
		 FROM enrichment_attempts`, OutcomeSuccess, OutcomeSuccess,
	).Scan(&stats.TotalAttempts, &stats.SuccessAttempts, &stats.FailedAttempts, &stats.PhonesDelivered)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return stats, nil
}

// Health pings the ledger database.
func (db *DB) Health() error {
	return db.Ping()
}
