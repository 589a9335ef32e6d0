package models

import "time"

// CheckpointObservation is one raw checkpoint row from a completed trip
// session, already joined with its session fields. Input to the
// congestion pipeline.
type CheckpointObservation struct {
	SessionID        string    `json:"session_id" db:"session_id"`
	CheckpointName   string    `json:"checkpoint_name" db:"checkpoint_name"`
	CheckpointType   string    `json:"checkpoint_type" db:"checkpoint_type"`
	LineInfo         string    `json:"line_info,omitempty" db:"line_info"`
	LinkedStationID  string    `json:"linked_station_id,omitempty" db:"linked_station_id"`
	LinkedBusStopID  string    `json:"linked_bus_stop_id,omitempty" db:"linked_bus_stop_id"`
	WaitMinutes      float64   `json:"wait_minutes" db:"wait_minutes"`
	DelayMinutes     float64   `json:"delay_minutes" db:"delay_minutes"`
	SessionStartedAt time.Time `json:"session_started_at" db:"session_started_at"`
}

// SessionRecord is one completed trip session with its first-checkpoint
// metadata. Input to the insights pipeline.
type SessionRecord struct {
	SessionID            string    `json:"session_id" db:"session_id"`
	UserID               string    `json:"user_id" db:"user_id"`
	StartedAt            time.Time `json:"started_at" db:"started_at"`
	TotalDurationMinutes float64   `json:"total_duration_minutes" db:"total_duration_minutes"`
	StartCheckpointName  string    `json:"start_checkpoint_name" db:"start_checkpoint_name"`
	StartCheckpointType  string    `json:"start_checkpoint_type" db:"start_checkpoint_type"`
}

// UserPlace is an active saved place (home, work) for a user.
type UserPlace struct {
	UserID    string  `json:"user_id" db:"user_id"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	PlaceType string  `json:"place_type" db:"place_type"`
}

// PlaceType constants
const (
	PlaceTypeHome = "home"
	PlaceTypeWork = "work"
)
