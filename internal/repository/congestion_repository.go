package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/commute-backend-go/internal/database"
	"github.com/jengzang/commute-backend-go/internal/models"
)

// CongestionRepository handles database operations for segment congestion
// aggregates.
type CongestionRepository struct {
	db *sql.DB
}

// NewCongestionRepository creates a new congestion repository
func NewCongestionRepository(db *sql.DB) *CongestionRepository {
	return &CongestionRepository{db: db}
}

const congestionColumns = `
	id, segment_key, display_name, checkpoint_type, line_info,
	linked_station_id, linked_bus_stop_id, time_slot,
	avg_wait_minutes, avg_delay_minutes, delay_spread,
	sample_count, level, confidence, updated_at
`

// ReplaceAll deletes every stored aggregate and inserts the given set in
// one transaction. Callers must serialize full runs.
func (r *CongestionRepository) ReplaceAll(ctx context.Context, aggregates []models.SegmentCongestion) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM segment_congestion"); err != nil {
			return fmt.Errorf("failed to clear segment congestion: %w", err)
		}

		query := `
			INSERT INTO segment_congestion (
				segment_key, display_name, checkpoint_type, line_info,
				linked_station_id, linked_bus_stop_id, time_slot,
				avg_wait_minutes, avg_delay_minutes, delay_spread,
				sample_count, level, confidence, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range aggregates {
			_, err := stmt.ExecContext(ctx,
				a.SegmentKey, a.DisplayName, a.CheckpointType, a.LineInfo,
				a.LinkedStationID, a.LinkedBusStopID, a.TimeSlot,
				a.AvgWaitMinutes, a.AvgDelayMinutes, a.DelaySpread,
				a.SampleCount, string(a.Level), a.Confidence, a.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert aggregate %s/%s: %w", a.SegmentKey, a.TimeSlot, err)
			}
		}
		return nil
	})
}

// Upsert inserts or overwrites one aggregate by its natural key.
func (r *CongestionRepository) Upsert(ctx context.Context, a *models.SegmentCongestion) error {
	query := `
		INSERT INTO segment_congestion (
			segment_key, display_name, checkpoint_type, line_info,
			linked_station_id, linked_bus_stop_id, time_slot,
			avg_wait_minutes, avg_delay_minutes, delay_spread,
			sample_count, level, confidence, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment_key, time_slot) DO UPDATE SET
			display_name = excluded.display_name,
			checkpoint_type = excluded.checkpoint_type,
			line_info = excluded.line_info,
			linked_station_id = excluded.linked_station_id,
			linked_bus_stop_id = excluded.linked_bus_stop_id,
			avg_wait_minutes = excluded.avg_wait_minutes,
			avg_delay_minutes = excluded.avg_delay_minutes,
			delay_spread = excluded.delay_spread,
			sample_count = excluded.sample_count,
			level = excluded.level,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		a.SegmentKey, a.DisplayName, a.CheckpointType, a.LineInfo,
		a.LinkedStationID, a.LinkedBusStopID, a.TimeSlot,
		a.AvgWaitMinutes, a.AvgDelayMinutes, a.DelaySpread,
		a.SampleCount, string(a.Level), a.Confidence, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert aggregate: %w", err)
	}
	return nil
}

// GetByKey returns the aggregate for a (segment key, time slot), or nil
// when none exists.
func (r *CongestionRepository) GetByKey(ctx context.Context, segmentKey, slot string) (*models.SegmentCongestion, error) {
	query := `SELECT ` + congestionColumns + ` FROM segment_congestion WHERE segment_key = ? AND time_slot = ?`

	var a models.SegmentCongestion
	err := r.db.QueryRowContext(ctx, query, segmentKey, slot).Scan(
		&a.ID, &a.SegmentKey, &a.DisplayName, &a.CheckpointType, &a.LineInfo,
		&a.LinkedStationID, &a.LinkedBusStopID, &a.TimeSlot,
		&a.AvgWaitMinutes, &a.AvgDelayMinutes, &a.DelaySpread,
		&a.SampleCount, &a.Level, &a.Confidence, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get aggregate: %w", err)
	}
	return &a, nil
}

// List retrieves aggregates with filtering, worst level first.
func (r *CongestionRepository) List(ctx context.Context, filter models.CongestionFilter) ([]models.SegmentCongestion, error) {
	query := `SELECT ` + congestionColumns + ` FROM segment_congestion`

	var conditions []string
	var args []interface{}

	if filter.TimeSlot != "" {
		conditions = append(conditions, "time_slot = ?")
		args = append(args, filter.TimeSlot)
	}
	if filter.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, filter.Level)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY avg_delay_minutes DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = models.DefaultCongestionLimit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment congestion: %w", err)
	}
	defer rows.Close()

	return scanCongestion(rows)
}

// BySegmentKeys returns the aggregates for the given keys at one time
// slot, keyed by segment key.
func (r *CongestionRepository) BySegmentKeys(ctx context.Context, keys []string, slot string) (map[string]models.SegmentCongestion, error) {
	if len(keys) == 0 {
		return map[string]models.SegmentCongestion{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := `SELECT ` + congestionColumns + ` FROM segment_congestion
		WHERE time_slot = ? AND segment_key IN (` + placeholders + `)`

	args := make([]interface{}, 0, len(keys)+1)
	args = append(args, slot)
	for _, k := range keys {
		args = append(args, k)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment congestion: %w", err)
	}
	defer rows.Close()

	aggregates, err := scanCongestion(rows)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]models.SegmentCongestion, len(aggregates))
	for _, a := range aggregates {
		byKey[a.SegmentKey] = a
	}
	return byKey, nil
}

func scanCongestion(rows *sql.Rows) ([]models.SegmentCongestion, error) {
	var aggregates []models.SegmentCongestion
	for rows.Next() {
		var a models.SegmentCongestion
		err := rows.Scan(
			&a.ID, &a.SegmentKey, &a.DisplayName, &a.CheckpointType, &a.LineInfo,
			&a.LinkedStationID, &a.LinkedBusStopID, &a.TimeSlot,
			&a.AvgWaitMinutes, &a.AvgDelayMinutes, &a.DelaySpread,
			&a.SampleCount, &a.Level, &a.Confidence, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}
