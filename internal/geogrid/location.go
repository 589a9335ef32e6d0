package geogrid

import (
	"hash/fnv"
	"strings"
)

// LocationSource tags how a session's grid cell was resolved.
type LocationSource string

const (
	// SourceKnown means the location came from the user's saved home place.
	SourceKnown LocationSource = "known"

	// SourceFallback means the location is a deterministic pseudo-location
	// derived from the origin checkpoint name, not a real coordinate.
	SourceFallback LocationSource = "fallback"
)

// ResolvedLocation is a coordinate pair plus the strategy that produced it.
type ResolvedLocation struct {
	Lat    float64
	Lng    float64
	Source LocationSource
}

// Fallback pseudo-locations land in a ±0.1 degree box around Seoul City
// Hall so hash cells stay inside a plausible service area.
const (
	fallbackBaseLat = 37.5665
	fallbackBaseLng = 126.9780
	fallbackSpread  = 0.2
)

// Known wraps a real coordinate pair.
func Known(lat, lng float64) ResolvedLocation {
	return ResolvedLocation{Lat: lat, Lng: lng, Source: SourceKnown}
}

// FallbackFromName derives a deterministic pseudo-location from an origin
// checkpoint name. Two sessions with the same origin name always land in
// the same cell, so sparse users without a home place still aggregate.
func FallbackFromName(name string) ResolvedLocation {
	h := fnv.New32a()
	h.Write([]byte(strings.TrimSpace(name)))
	sum := h.Sum32()

	latOffset := (float64(sum%1000)/1000 - 0.5) * fallbackSpread
	lngOffset := (float64((sum/1000)%1000)/1000 - 0.5) * fallbackSpread

	return ResolvedLocation{
		Lat:    fallbackBaseLat + latOffset,
		Lng:    fallbackBaseLng + lngOffset,
		Source: SourceFallback,
	}
}

// CellKey returns the grid key of the cell containing the location.
func (l ResolvedLocation) CellKey() string {
	return Key(l.Lat, l.Lng)
}
