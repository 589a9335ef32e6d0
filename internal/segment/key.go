package segment

import "strings"

// Checkpoint carries the fields of a transit checkpoint that participate
// in segment key derivation. CheckpointType is part of the input contract
// but does not affect the key.
type Checkpoint struct {
	Name            string
	CheckpointType  string
	LineInfo        string
	LinkedStationID string
	LinkedBusStopID string
}

// Suffixes stripped from checkpoint names so that "서울역 정류장" and
// "서울역" collapse to the same key. Ordered longest-first; stripping
// loops until no suffix matches.
var nameSuffixes = []string{"정류장", "정류소", "역", "站"}

// Key derives the deterministic string key that groups cross-user
// observations of the same place.
//
// Priority: linked station id (plus line, when present), then linked bus
// stop id, then normalized name (plus line). Empty-string ids fall
// through exactly like absent ids.
func Key(cp Checkpoint) string {
	if id := strings.TrimSpace(cp.LinkedStationID); id != "" {
		key := "station_" + id
		if line := NormalizeLine(cp.LineInfo); line != "" {
			key += "_" + line
		}
		return key
	}

	if id := strings.TrimSpace(cp.LinkedBusStopID); id != "" {
		return "bus_" + id
	}

	key := "name_" + NormalizeName(cp.Name)
	if line := NormalizeLine(cp.LineInfo); line != "" {
		key += "_" + line
	}
	return key
}

// NormalizeLine lowercases a line/route label and strips all whitespace.
func NormalizeLine(s string) string {
	return stripSpace(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeName lowercases a checkpoint name, strips all whitespace, then
// repeatedly strips trailing transit suffixes. A suffix is never stripped
// if the remainder would become empty.
func NormalizeName(s string) string {
	name := stripSpace(strings.ToLower(strings.TrimSpace(s)))

	for {
		stripped := false
		for _, suffix := range nameSuffixes {
			if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
				name = strings.TrimSuffix(name, suffix)
				stripped = true
				break
			}
		}
		if !stripped {
			return name
		}
	}
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
