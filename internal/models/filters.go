package models

// CongestionFilter represents filter parameters for querying segment congestion
type CongestionFilter struct {
	TimeSlot string `form:"time_slot"`
	Level    string `form:"level"` // low, moderate, high, severe
	Limit    int    `form:"limit"` // Defaults to 50
}

// DefaultCongestionLimit caps segment list responses when no limit is given.
const DefaultCongestionLimit = 50

// RegionFilter represents filter parameters for querying regional insights
type RegionFilter struct {
	Limit int `form:"limit"`
}

// NearbyFilter represents filter parameters for the nearby-regions query
type NearbyFilter struct {
	Lat     float64 `form:"lat"`
	Lng     float64 `form:"lng"`
	RadiusM float64 `form:"radius_m"` // Meters, defaults to 3000
}
