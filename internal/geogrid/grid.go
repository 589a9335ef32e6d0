package geogrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// CellSizeDegrees is the fixed grid cell size (~1.1 km of latitude and
// ~0.9 km of longitude at mid-Korea latitudes).
const CellSizeDegrees = 0.01

// EarthRadiusMeters is the mean Earth radius used for distance calculations
const EarthRadiusMeters = 6371000.0

// UnknownRegionLabel is the display name used when a cell has no usable
// checkpoint names to vote on.
const UnknownRegionLabel = "알 수 없는 지역"

const keyPrefix = "grid_"

// SnapFloor snaps a coordinate to the lower edge of its grid cell.
func SnapFloor(v float64) float64 {
	return math.Floor(v*100) / 100
}

// SnapCenter snaps a coordinate to the center of its grid cell.
func SnapCenter(v float64) float64 {
	return SnapFloor(v) + CellSizeDegrees/2
}

// Key derives the stable cell key for a coordinate pair, e.g.
// "grid_37.56_126.97".
func Key(lat, lng float64) string {
	return fmt.Sprintf("%s%s_%s", keyPrefix, fixed2(SnapFloor(lat)), fixed2(SnapFloor(lng)))
}

// ParseKey recovers the cell center from a grid key. It returns ok=false
// for any string that does not match the grid_<num>_<num> shape.
func ParseKey(key string) (lat, lng float64, ok bool) {
	if !strings.HasPrefix(key, keyPrefix) {
		return 0, 0, false
	}

	parts := strings.Split(key[len(keyPrefix):], "_")
	if len(parts) != 2 {
		return 0, 0, false
	}

	latFloor, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lngFloor, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}

	return latFloor + CellSizeDegrees/2, lngFloor + CellSizeDegrees/2, true
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// MostCommonName returns the name with the highest occurrence count in a
// single left-to-right scan. Ties break in favor of the name seen first;
// an empty input returns UnknownRegionLabel.
func MostCommonName(names []string) string {
	if len(names) == 0 {
		return UnknownRegionLabel
	}

	counts := make(map[string]int, len(names))
	var order []string
	for _, name := range names {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	// Strict comparison over first-seen order keeps the earliest name on a tie.
	best := order[0]
	for _, name := range order[1:] {
		if counts[name] > counts[best] {
			best = name
		}
	}
	return best
}

// DistanceMeters calculates the great-circle distance between two points
// in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}
