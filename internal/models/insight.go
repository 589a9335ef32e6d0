package models

import "time"

// MinRegionUsers is the k-anonymity threshold: a grid cell is only ever
// emitted when at least this many distinct users contributed sessions.
const MinRegionUsers = 5

// PeakHours is the 24-slot peak-hour histogram (index = KST civil hour,
// value = session count).
type PeakHours [24]int

// Top returns the hour with the highest session count; the earliest hour
// wins a tie.
func (p PeakHours) Top() int {
	best := 0
	for hour, count := range p {
		if count > p[best] {
			best = hour
		}
	}
	return best
}

// RegionalInsight is the per-grid-cell aggregate record. Created and
// replaced wholesale by the insights pipeline; read-only to consumers.
type RegionalInsight struct {
	ID int64 `json:"id" db:"id"`

	RegionID    string  `json:"region_id" db:"region_id"`
	DisplayName string  `json:"display_name" db:"display_name"`
	CenterLat   float64 `json:"center_lat" db:"center_lat"`
	CenterLng   float64 `json:"center_lng" db:"center_lng"`

	AvgDurationMinutes    float64 `json:"avg_duration_minutes" db:"avg_duration_minutes"`
	MedianDurationMinutes float64 `json:"median_duration_minutes" db:"median_duration_minutes"`
	DurationSpread        float64 `json:"duration_spread" db:"duration_spread"`
	UserCount             int     `json:"user_count" db:"user_count"`
	SessionCount          int     `json:"session_count" db:"session_count"`
	Confidence            float64 `json:"confidence" db:"confidence"`

	PeakHours PeakHours `json:"peak_hours" db:"peak_hours"`

	WeekTrendPercent  float64 `json:"week_trend_percent" db:"week_trend_percent"`
	MonthTrendPercent float64 `json:"month_trend_percent" db:"month_trend_percent"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
