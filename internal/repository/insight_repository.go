package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jengzang/commute-backend-go/internal/database"
	"github.com/jengzang/commute-backend-go/internal/models"
)

// InsightRepository handles database operations for regional insight
// aggregates.
type InsightRepository struct {
	db *sql.DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

const insightColumns = `
	id, region_id, display_name, center_lat, center_lng,
	avg_duration_minutes, median_duration_minutes, duration_spread,
	user_count, session_count, confidence, peak_hours,
	week_trend_percent, month_trend_percent, updated_at
`

// ReplaceAll deletes every stored insight and inserts the given set in
// one transaction. Callers must serialize full runs.
func (r *InsightRepository) ReplaceAll(ctx context.Context, insights []models.RegionalInsight) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM regional_insights"); err != nil {
			return fmt.Errorf("failed to clear regional insights: %w", err)
		}

		query := `
			INSERT INTO regional_insights (
				region_id, display_name, center_lat, center_lng,
				avg_duration_minutes, median_duration_minutes, duration_spread,
				user_count, session_count, confidence, peak_hours,
				week_trend_percent, month_trend_percent, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, in := range insights {
			peakHours, err := json.Marshal(in.PeakHours)
			if err != nil {
				return fmt.Errorf("failed to marshal peak hours for %s: %w", in.RegionID, err)
			}

			_, err = stmt.ExecContext(ctx,
				in.RegionID, in.DisplayName, in.CenterLat, in.CenterLng,
				in.AvgDurationMinutes, in.MedianDurationMinutes, in.DurationSpread,
				in.UserCount, in.SessionCount, in.Confidence, string(peakHours),
				in.WeekTrendPercent, in.MonthTrendPercent, in.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert insight %s: %w", in.RegionID, err)
			}
		}
		return nil
	})
}

// GetByRegionID returns one insight, or nil when the region was never
// computed or was withheld by the privacy filter.
func (r *InsightRepository) GetByRegionID(ctx context.Context, regionID string) (*models.RegionalInsight, error) {
	query := `SELECT ` + insightColumns + ` FROM regional_insights WHERE region_id = ?`

	row := r.db.QueryRowContext(ctx, query, regionID)
	insight, err := scanInsightRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return insight, nil
}

// List retrieves insights ordered by session count, busiest regions first.
func (r *InsightRepository) List(ctx context.Context, limit int) ([]models.RegionalInsight, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + insightColumns + ` FROM regional_insights
		ORDER BY session_count DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []models.RegionalInsight
	for rows.Next() {
		insight, err := scanInsightRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		insights = append(insights, *insight)
	}
	return insights, rows.Err()
}

func scanInsightRow(scan func(dest ...interface{}) error) (*models.RegionalInsight, error) {
	var in models.RegionalInsight
	var peakHours string

	err := scan(
		&in.ID, &in.RegionID, &in.DisplayName, &in.CenterLat, &in.CenterLng,
		&in.AvgDurationMinutes, &in.MedianDurationMinutes, &in.DurationSpread,
		&in.UserCount, &in.SessionCount, &in.Confidence, &peakHours,
		&in.WeekTrendPercent, &in.MonthTrendPercent, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(peakHours), &in.PeakHours); err != nil {
		return nil, fmt.Errorf("failed to unmarshal peak hours: %w", err)
	}
	return &in, nil
}
