package trend

import "github.com/jengzang/commute-backend-go/internal/stats"

// Direction is the three-way trend classification. Semantics are
// duration-based: a rising commute time is worsening.
type Direction string

const (
	Improving Direction = "improving"
	Stable    Direction = "stable"
	Worsening Direction = "worsening"
)

// stableBandPercent is the symmetric no-signal band; both boundaries are
// exclusive, so exactly ±3 classifies as stable.
const stableBandPercent = 3.0

// Compute returns the percentage change between the means of two
// time-windowed sample sets. It returns 0 when either window is empty or
// the previous mean is exactly zero, rather than fabricating a signal
// from missing data.
func Compute(current, previous []float64) float64 {
	if len(current) == 0 || len(previous) == 0 {
		return 0
	}

	prevMean := stats.Mean(previous)
	if prevMean == 0 {
		return 0
	}

	return (stats.Mean(current) - prevMean) / prevMean * 100
}

// Classify maps a trend percentage to its direction.
func Classify(percent float64) Direction {
	switch {
	case percent > stableBandPercent:
		return Worsening
	case percent < -stableBandPercent:
		return Improving
	default:
		return Stable
	}
}
