package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/commute-backend-go/internal/models"
)

// RouteRepository handles database operations for saved routes
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// GetByID returns a route with its ordered checkpoint list, or nil when
// no such route exists.
func (r *RouteRepository) GetByID(ctx context.Context, id int64) (*models.Route, error) {
	var route models.Route
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name FROM routes WHERE id = ?", id,
	).Scan(&route.ID, &route.UserID, &route.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	query := `
		SELECT id, name, sequence_order, checkpoint_type,
		       line_info, linked_station_id, linked_bus_stop_id
		FROM route_checkpoints
		WHERE route_id = ?
		ORDER BY sequence_order
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query route checkpoints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cp models.RouteCheckpoint
		err := rows.Scan(
			&cp.ID, &cp.Name, &cp.SequenceOrder, &cp.CheckpointType,
			&cp.LineInfo, &cp.LinkedStationID, &cp.LinkedBusStopID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route checkpoint: %w", err)
		}
		route.Checkpoints = append(route.Checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &route, nil
}
