package models

import "time"

// RegionTrendView is the read-side trend view of one region.
type RegionTrendView struct {
	RegionID          string    `json:"region_id"`
	WeekTrendPercent  float64   `json:"week_trend_percent"`
	WeekDirection     string    `json:"week_direction"`
	MonthTrendPercent float64   `json:"month_trend_percent"`
	MonthDirection    string    `json:"month_direction"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PeakHoursView is the read-side peak-hour view of one region.
type PeakHoursView struct {
	RegionID string    `json:"region_id"`
	Hours    PeakHours `json:"hours"`
	TopHour  int       `json:"top_hour"`
}

// NearbyRegion pairs a regional insight with its distance from the query
// point.
type NearbyRegion struct {
	Region         RegionalInsight `json:"region"`
	DistanceMeters float64         `json:"distance_m"`
}
