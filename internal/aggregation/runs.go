package aggregation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run kinds and modes recorded in aggregation_runs.
const (
	RunKindCongestion = "congestion"
	RunKindInsights   = "insights"

	RunModeFull        = "full"
	RunModeIncremental = "incremental"
)

// RunRecord is one row of run bookkeeping.
type RunRecord struct {
	ID          string     `json:"id" db:"id"`
	Kind        string     `json:"kind" db:"kind"`
	Mode        string     `json:"mode" db:"mode"`
	Status      string     `json:"status" db:"status"`
	Processed   int        `json:"processed" db:"processed"`
	Skipped     int        `json:"skipped" db:"skipped"`
	Filtered    int        `json:"filtered" db:"filtered"`
	Error       string     `json:"error,omitempty" db:"error_message"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RunTracker records aggregation run lifecycle in the database so an
// external scheduler can observe outcomes.
type RunTracker struct {
	db *sql.DB
}

// NewRunTracker creates a new run tracker.
func NewRunTracker(db *sql.DB) *RunTracker {
	return &RunTracker{db: db}
}

// Begin records a new running run and returns its id.
func (t *RunTracker) Begin(kind, mode string) (string, error) {
	id := uuid.NewString()

	query := `
		INSERT INTO aggregation_runs (id, kind, mode, status, started_at)
		VALUES (?, ?, ?, 'running', CURRENT_TIMESTAMP)
	`
	if _, err := t.db.Exec(query, id, kind, mode); err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return id, nil
}

// Complete marks a run as completed with its result counts.
func (t *RunTracker) Complete(id string, result *RunResult) error {
	query := `
		UPDATE aggregation_runs
		SET status = 'completed',
		    processed = ?,
		    skipped = ?,
		    filtered = ?,
		    completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := t.db.Exec(query, result.Processed, result.Skipped, result.Filtered, id); err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (t *RunTracker) Fail(id string, runErr error) error {
	query := `
		UPDATE aggregation_runs
		SET status = 'failed',
		    error_message = ?,
		    completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := t.db.Exec(query, runErr.Error(), id); err != nil {
		return fmt.Errorf("failed to record run failure: %w", err)
	}
	return nil
}

// Latest returns the most recent run of a kind, or nil when none exists.
func (t *RunTracker) Latest(kind string) (*RunRecord, error) {
	query := `
		SELECT id, kind, mode, status, processed, skipped, filtered,
		       COALESCE(error_message, ''), started_at, completed_at
		FROM aggregation_runs
		WHERE kind = ?
		ORDER BY started_at DESC
		LIMIT 1
	`

	var r RunRecord
	var completedAt sql.NullTime
	err := t.db.QueryRow(query, kind).Scan(
		&r.ID, &r.Kind, &r.Mode, &r.Status, &r.Processed, &r.Skipped, &r.Filtered,
		&r.Error, &r.StartedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	if completedAt.Valid {
		r.CompletedAt = &completedAt.Time
	}
	return &r, nil
}
