package geogrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapFloorAndCenter(t *testing.T) {
	assert.InDelta(t, 37.56, SnapFloor(37.5665), 1e-9)
	assert.InDelta(t, 37.565, SnapCenter(37.5665), 1e-9)

	// Exact multiples of the cell size snap to themselves.
	assert.InDelta(t, 37.56, SnapFloor(37.56), 1e-9)
}

func TestKeyFormat(t *testing.T) {
	assert.Equal(t, "grid_37.56_126.97", Key(37.5665, 126.978))
	assert.Equal(t, "grid_-33.87_151.20", Key(-33.8651, 151.2099))
	assert.Equal(t, "grid_0.00_0.00", Key(0.001, 0.009))
}

func TestParseKeyRoundTrip(t *testing.T) {
	points := []struct{ lat, lng float64 }{
		{37.5665, 126.978},
		{-33.8651, 151.2099},
		{35.1796, 129.0756},
		{0.0001, -0.0001},
	}

	for _, p := range points {
		lat, lng, ok := ParseKey(Key(p.lat, p.lng))
		require.True(t, ok)

		// The parse recovers the cell center, wherever in the cell the
		// original point was.
		assert.InDelta(t, SnapCenter(p.lat), lat, 1e-9)
		assert.InDelta(t, SnapCenter(p.lng), lng, 1e-9)
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	malformed := []string{
		"",
		"grid",
		"grid_",
		"grid_37.56",
		"grid_37.56_126.97_extra",
		"grid_abc_126.97",
		"grid_37.56_xyz",
		"cell_37.56_126.97",
	}

	for _, key := range malformed {
		_, _, ok := ParseKey(key)
		assert.False(t, ok, "key %q should not parse", key)
	}
}

func TestMostCommonName(t *testing.T) {
	t.Run("highest count wins", func(t *testing.T) {
		names := []string{"서울역", "강남역", "서울역"}
		assert.Equal(t, "서울역", MostCommonName(names))
	})

	t.Run("tie goes to the first-seen name", func(t *testing.T) {
		names := []string{"강남역", "서울역", "서울역", "강남역"}
		assert.Equal(t, "강남역", MostCommonName(names))
	})

	t.Run("empty input returns the fallback label", func(t *testing.T) {
		assert.Equal(t, UnknownRegionLabel, MostCommonName(nil))
	})
}

func TestDistanceMeters(t *testing.T) {
	// Seoul City Hall to Gangnam station is roughly 8.4 km.
	d := DistanceMeters(37.5665, 126.978, 37.4979, 127.0276)
	assert.InDelta(t, 8700, d, 500)

	assert.InDelta(t, 0, DistanceMeters(37.5, 127.0, 37.5, 127.0), 1e-6)
}
