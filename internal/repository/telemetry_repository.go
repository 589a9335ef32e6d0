package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/commute-backend-go/internal/models"
)

// TelemetryRepository handles database reads of raw trip telemetry:
// checkpoint observations, completed sessions, and saved places.
type TelemetryRepository struct {
	db *sql.DB
}

// NewTelemetryRepository creates a new telemetry repository
func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

const observationColumns = `
	o.session_id, o.checkpoint_name, o.checkpoint_type, o.line_info,
	o.linked_station_id, o.linked_bus_stop_id,
	o.wait_minutes, o.delay_minutes, s.started_at
`

// CompletedObservations returns every checkpoint observation joined with
// its completed session.
func (r *TelemetryRepository) CompletedObservations(ctx context.Context) ([]models.CheckpointObservation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM checkpoint_observations o
		JOIN trip_sessions s ON s.session_id = o.session_id
		WHERE s.status = 'completed'
		ORDER BY o.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// SessionObservations returns the observations of a single completed session.
func (r *TelemetryRepository) SessionObservations(ctx context.Context, sessionID string) ([]models.CheckpointObservation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM checkpoint_observations o
		JOIN trip_sessions s ON s.session_id = o.session_id
		WHERE s.status = 'completed' AND o.session_id = ?
		ORDER BY o.id
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session observations: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

func scanObservations(rows *sql.Rows) ([]models.CheckpointObservation, error) {
	var observations []models.CheckpointObservation
	for rows.Next() {
		var o models.CheckpointObservation
		err := rows.Scan(
			&o.SessionID, &o.CheckpointName, &o.CheckpointType, &o.LineInfo,
			&o.LinkedStationID, &o.LinkedBusStopID,
			&o.WaitMinutes, &o.DelayMinutes, &o.SessionStartedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

const sessionColumns = `
	session_id, user_id, started_at, total_duration_minutes,
	start_checkpoint_name, start_checkpoint_type
`

// CompletedSessions returns every completed session with its
// first-checkpoint metadata.
func (r *TelemetryRepository) CompletedSessions(ctx context.Context) ([]models.SessionRecord, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM trip_sessions
		WHERE status = 'completed'
		ORDER BY started_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// UserSessions returns a user's completed sessions.
func (r *TelemetryRepository) UserSessions(ctx context.Context, userID string) ([]models.SessionRecord, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM trip_sessions
		WHERE status = 'completed' AND user_id = ?
		ORDER BY started_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]models.SessionRecord, error) {
	var sessions []models.SessionRecord
	for rows.Next() {
		var s models.SessionRecord
		err := rows.Scan(
			&s.SessionID, &s.UserID, &s.StartedAt, &s.TotalDurationMinutes,
			&s.StartCheckpointName, &s.StartCheckpointType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ActiveHomePlaces returns each user's active home place keyed by user id.
// A user with several active home rows keeps the most recent one.
func (r *TelemetryRepository) ActiveHomePlaces(ctx context.Context) (map[string]models.UserPlace, error) {
	query := `
		SELECT user_id, latitude, longitude, place_type
		FROM user_places
		WHERE active = 1 AND place_type = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, models.PlaceTypeHome)
	if err != nil {
		return nil, fmt.Errorf("failed to query home places: %w", err)
	}
	defer rows.Close()

	places := make(map[string]models.UserPlace)
	for rows.Next() {
		var p models.UserPlace
		if err := rows.Scan(&p.UserID, &p.Latitude, &p.Longitude, &p.PlaceType); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places[p.UserID] = p
	}
	return places, rows.Err()
}

// UserHomePlace returns a user's active home place, or nil when none exists.
func (r *TelemetryRepository) UserHomePlace(ctx context.Context, userID string) (*models.UserPlace, error) {
	query := `
		SELECT user_id, latitude, longitude, place_type
		FROM user_places
		WHERE active = 1 AND place_type = ? AND user_id = ?
		ORDER BY id DESC
		LIMIT 1
	`

	var p models.UserPlace
	err := r.db.QueryRowContext(ctx, query, models.PlaceTypeHome, userID).Scan(
		&p.UserID, &p.Latitude, &p.Longitude, &p.PlaceType,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get home place: %w", err)
	}
	return &p, nil
}
