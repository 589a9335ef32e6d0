package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyPriority(t *testing.T) {
	tests := []struct {
		name string
		cp   Checkpoint
		want string
	}{
		{
			name: "station id wins over everything",
			cp:   Checkpoint{Name: "서울역", LinkedStationID: "S100", LinkedBusStopID: "B7", LineInfo: "1호선"},
			want: "station_S100_1호선",
		},
		{
			name: "station id without line",
			cp:   Checkpoint{Name: "서울역", LinkedStationID: "S100"},
			want: "station_S100",
		},
		{
			name: "bus stop ignores line label",
			cp:   Checkpoint{Name: "강남대로", LinkedBusStopID: "B7", LineInfo: "146"},
			want: "bus_B7",
		},
		{
			name: "name fallback with line",
			cp:   Checkpoint{Name: "강남역", LineInfo: "2호선"},
			want: "name_강남_2호선",
		},
		{
			name: "empty-string ids fall through like absent ids",
			cp:   Checkpoint{Name: "강남역", LinkedStationID: "", LinkedBusStopID: "  "},
			want: "name_강남",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.cp))
		})
	}
}

func TestKeyCollapsesSuffixVariants(t *testing.T) {
	// Two different suffixes stripped in sequence collapse to one key.
	a := Key(Checkpoint{Name: "서울역 정류장"})
	b := Key(Checkpoint{Name: "서울역"})
	c := Key(Checkpoint{Name: "서울"})

	assert.Equal(t, b, a)
	assert.Equal(t, c, b)

	assert.Equal(t, Key(Checkpoint{Name: "강남"}), Key(Checkpoint{Name: "강남역"}))
}

func TestKeyIdempotentUnderCaseAndWhitespace(t *testing.T) {
	assert.Equal(t,
		Key(Checkpoint{Name: "City Hall Station", LineInfo: "Line 2"}),
		Key(Checkpoint{Name: "  city hall station ", LineInfo: " LINE 2 "}),
	)
}

func TestNormalizeNameKeepsBareSuffix(t *testing.T) {
	// A name that is nothing but a suffix must not normalize to empty.
	assert.Equal(t, "역", NormalizeName("역"))
	assert.Equal(t, "정류장", NormalizeName("정류장"))
}

func TestNormalizeLine(t *testing.T) {
	assert.Equal(t, "2호선", NormalizeLine(" 2호선 "))
	assert.Equal(t, "line2", NormalizeLine("Line 2"))
	assert.Equal(t, "", NormalizeLine("   "))
}
