package models

// RouteCheckpoint is one ordered checkpoint of a user's saved route.
type RouteCheckpoint struct {
	ID              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	SequenceOrder   int    `json:"sequence_order" db:"sequence_order"`
	CheckpointType  string `json:"checkpoint_type" db:"checkpoint_type"`
	LineInfo        string `json:"line_info,omitempty" db:"line_info"`
	LinkedStationID string `json:"linked_station_id,omitempty" db:"linked_station_id"`
	LinkedBusStopID string `json:"linked_bus_stop_id,omitempty" db:"linked_bus_stop_id"`
}

// Route is a user's saved route with its ordered checkpoint list.
type Route struct {
	ID          int64             `json:"id" db:"id"`
	UserID      string            `json:"user_id" db:"user_id"`
	Name        string            `json:"name" db:"name"`
	Checkpoints []RouteCheckpoint `json:"checkpoints"`
}

// CheckpointCongestion pairs a route checkpoint with its congestion
// aggregate for overlay responses. Congestion is nil when the checkpoint
// has no aggregate or the aggregate misses the minimum-sample predicate.
type CheckpointCongestion struct {
	CheckpointID  int64              `json:"checkpoint_id"`
	Name          string             `json:"name"`
	SequenceOrder int                `json:"sequence_order"`
	SegmentKey    string             `json:"segment_key"`
	Congestion    *SegmentCongestion `json:"congestion"`
}

// RouteOverlay is the congestion overlay for one route at one time slot.
// OverallLevel is the worst level among checkpoints with data, low when
// none has data.
type RouteOverlay struct {
	RouteID      int64                  `json:"route_id"`
	TimeSlot     string                 `json:"time_slot"`
	OverallLevel CongestionLevel        `json:"overall_level"`
	Checkpoints  []CheckpointCongestion `json:"checkpoints"`
}

// RegionComparison compares a user's own commute average against their
// region's stored average. All fields are zero when the region is
// privacy-filtered or unknown.
type RegionComparison struct {
	RegionID         string  `json:"region_id,omitempty"`
	UserAvgMinutes   float64 `json:"user_avg_minutes"`
	RegionAvgMinutes float64 `json:"region_avg_minutes"`
	DiffMinutes      float64 `json:"diff_minutes"`
	DiffPercent      float64 `json:"diff_percent"`
	UserSessionCount int     `json:"user_session_count"`
	RegionUserCount  int     `json:"region_user_count"`
	HasRegionData    bool    `json:"has_region_data"`
}
