package models

import "time"

// CongestionLevel is the four-level ordinal congestion classification.
type CongestionLevel string

const (
	CongestionLow      CongestionLevel = "low"
	CongestionModerate CongestionLevel = "moderate"
	CongestionHigh     CongestionLevel = "high"
	CongestionSevere   CongestionLevel = "severe"
)

// Rank returns the ordinal position of a level (low < moderate < high <
// severe). Unknown levels rank below low.
func (l CongestionLevel) Rank() int {
	switch l {
	case CongestionLow:
		return 1
	case CongestionModerate:
		return 2
	case CongestionHigh:
		return 3
	case CongestionSevere:
		return 4
	default:
		return 0
	}
}

// ValidCongestionLevel reports whether s names a known level.
func ValidCongestionLevel(s string) bool {
	return CongestionLevel(s).Rank() > 0
}

// LevelForDelay classifies a delay posterior mean (minutes) into a
// congestion level.
func LevelForDelay(delayMinutes float64) CongestionLevel {
	switch {
	case delayMinutes <= 2:
		return CongestionLow
	case delayMinutes <= 5:
		return CongestionModerate
	case delayMinutes <= 10:
		return CongestionHigh
	default:
		return CongestionSevere
	}
}

// MinReliableSamples is the minimum sample count before a segment's
// aggregate is shown at read time.
const MinReliableSamples = 3

// SegmentCongestion is the per-(segment key, time slot) aggregate record.
// Created and replaced wholesale by the congestion pipeline; read-only to
// consumers.
type SegmentCongestion struct {
	ID int64 `json:"id" db:"id"`

	SegmentKey      string `json:"segment_key" db:"segment_key"`
	DisplayName     string `json:"display_name" db:"display_name"`
	CheckpointType  string `json:"checkpoint_type" db:"checkpoint_type"`
	LineInfo        string `json:"line_info,omitempty" db:"line_info"`
	LinkedStationID string `json:"linked_station_id,omitempty" db:"linked_station_id"`
	LinkedBusStopID string `json:"linked_bus_stop_id,omitempty" db:"linked_bus_stop_id"`
	TimeSlot        string `json:"time_slot" db:"time_slot"`

	AvgWaitMinutes  float64         `json:"avg_wait_minutes" db:"avg_wait_minutes"`
	AvgDelayMinutes float64         `json:"avg_delay_minutes" db:"avg_delay_minutes"`
	DelaySpread     float64         `json:"delay_spread" db:"delay_spread"`
	SampleCount     int             `json:"sample_count" db:"sample_count"`
	Level           CongestionLevel `json:"level" db:"level"`
	Confidence      float64         `json:"confidence" db:"confidence"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasEnoughSamples reports whether the aggregate is backed by enough
// observations to show without excessive noise.
func (s *SegmentCongestion) HasEnoughSamples() bool {
	return s.SampleCount >= MinReliableSamples
}
