package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeNoSignal(t *testing.T) {
	assert.Equal(t, 0.0, Compute(nil, []float64{10, 20}))
	assert.Equal(t, 0.0, Compute([]float64{10, 20}, nil))
	assert.Equal(t, 0.0, Compute(nil, nil))

	// Previous mean of exactly zero must not divide.
	assert.Equal(t, 0.0, Compute([]float64{10}, []float64{0, 0}))
}

func TestComputePercentChange(t *testing.T) {
	assert.InDelta(t, 25.0, Compute([]float64{50}, []float64{40}), 1e-9)
	assert.InDelta(t, -20.0, Compute([]float64{32}, []float64{40}), 1e-9)
	assert.InDelta(t, 0.0, Compute([]float64{40, 40}, []float64{40}), 1e-9)
}

func TestClassifyBoundariesExclusive(t *testing.T) {
	tests := []struct {
		percent float64
		want    Direction
	}{
		{3.0, Stable}, // Exactly +3 is still stable
		{3.01, Worsening},
		{-3.0, Stable}, // Exactly -3 is still stable
		{-3.01, Improving},
		{0, Stable},
		{57.3, Worsening},
		{-41.2, Improving},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.percent), "percent %v", tt.percent)
	}
}
